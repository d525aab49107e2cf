package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Decoding %d streams":                  "%d 本のストリームをデコードします",
		"Decoded %d frames in %d ms":           "%d フレームを %d ms でデコードしました",
		"Summary saved to %s":                  "サマリーを %s に保存しました",
		"%s has B-frames, output lags input":   "%s はBフレームを含むため、出力が入力より遅れます",
		"Interrupted, shutting down...":        "中断されました。シャットダウン中...",
		"Probed %s: %dx%d profile %d level %d": "%s を解析: %dx%d プロファイル %d レベル %d",

		// Decode stage
		"Decoding %s": "%s をデコード中",
		"Decoded %s: %d frames from %d bytes in %d ms": "%s のデコード完了: %d バイトから %d フレーム (%d ms)",
		"Geometry of %s changed to %dx%d":              "%s の解像度が %dx%d に変わりました",

		// Decoder (engine component)
		"Frame %d decoded: %dx%d %s":            "フレーム %d をデコード: %dx%d %s",
		"Packet of %d bytes rejected: %v":       "%d バイトのパケットが拒否されました: %v",
		"Draining decoder":                      "デコーダーに残るフレームを取り出し中",
		"End of stream rejected: %v":            "ストリーム終端が拒否されました: %v",
		"Drain stopped: %v":                     "フレームの取り出しを中断しました: %v",
		"Scaler built for %dx%d %s":             "%dx%d %s 用のスケーラーを作成しました",
		"Colorspace details unavailable for %s": "%s の色空間情報を取得できません",

		// RTP source
		"Receiving RTP on %s":                        "%s でRTPを受信中",
		"Waiting for the start of a fragmented unit": "分割ユニットの先頭を待っています",

		// Warnings
		"Frame %d of %s not converted: %v":           "%[2]s のフレーム %[1]d を変換できませんでした: %[3]v",
		"Frame of %s has no convertible size: %dx%d": "%s のフレームは変換できないサイズです: %dx%d",
		"Parser stalled on %s, dropping %d bytes":    "%s のパーサーが停止しました。%d バイトを破棄します",
		"Dropped RTP packet: %v":                     "RTPパケットを破棄しました: %v",

		// Errors
		"Stream %s failed: %s":        "ストリーム %s が失敗しました: %s",
		"Failed to reset parser: %v":  "パーサーのリセットに失敗しました: %v",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",
		"Probe of %s failed: %v":      "%s の解析に失敗しました: %v",
	})
}
