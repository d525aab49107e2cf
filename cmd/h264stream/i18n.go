// Package main provides localization for the h264stream CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Decode H.264 streams to packed RGB frames.": "H.264ストリームをパックドRGBフレームにデコード",

		// Runtime messages
		"At least one input is required":                 "入力が少なくとも1つ必要です",
		"Interrupted, shutting down...":                  "中断されました。シャットダウン中...",
		"RTP packets: %d, access units: %d, dropped: %d": "RTPパケット: %d, アクセスユニット: %d, 破棄: %d",
		"Wrote %d frames of %dx%d to %s":                 "%[2]dx%[3]d のフレームを %[1]d 枚 %[4]s に書き込みました",
		"Probing %d bytes of %s":                         "%[2]s の先頭 %[1]d バイトを解析中",

		// Version command
		"h264stream version %s": "h264stream バージョン %s",

		// Probe output
		"Resolution: %dx%d":     "解像度: %dx%d",
		"Profile: %d, level %d": "プロファイル: %d, レベル %d",
		"Full range: %t":        "フルレンジ: %t",
		"B-frames: %t":          "Bフレーム: %t",
		"NAL units:":            "NALユニット:",
		"Slices:":               "スライス:",

		// Summary content
		"Decode Summary":          "デコードサマリー",
		"Generated":               "生成日時",
		"Overview":                "概要",
		"Settings":                "設定",
		"Notes":                   "注記",
		"Item":                    "項目",
		"Value":                   "値",
		"Generated by h264stream": "生成: h264stream",

		// Overview and stream table
		"Streams":    "ストリーム数",
		"Stream":     "ストリーム",
		"Frames":     "フレーム数",
		"Input":      "入力",
		"Failed":     "失敗",
		"Resolution": "解像度",
		"Profile":    "プロファイル",
		"Packets":    "パケット数",
		"Rejected":   "拒否",
		"Speed":      "速度",
		"full range": "フルレンジ",
		"B-frames":   "Bフレーム",

		// Notes
		"Error":                "エラー",
		"frames not converted": "フレームを変換できませんでした",
		"resolution changes":   "回の解像度変更",

		// Settings section
		"Pixel Order": "画素順序",
		"Chunk Size":  "チャンクサイズ",
		"Snapshots":   "スナップショット",
		"every":       "間隔",
		"Raw Dump":    "RAW出力",
		"Enabled":     "有効",
		"Output":      "出力先",
	})
}
