package filesink

import (
	"bytes"
	"image"
	"path/filepath"
	"sync"
	"testing"

	"github.com/user/h264stream/pkg/mocks"
	"github.com/user/h264stream/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("out")

func testFrame(width, height, stride int, fill byte) ports.RGBFrame {
	pix := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width*3; x++ {
			pix[y*stride+x] = fill
		}
	}
	return ports.RGBFrame{Width: width, Height: height, Stride: stride, Order: ports.OrderBGR24, Pix: pix}
}

func TestSink_Enabled(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}

	if New(testBaseDir, fs, renderer, Options{}).Enabled() {
		t.Error("expected sink without snapshots or raw output to be disabled")
	}
	if !New(testBaseDir, fs, renderer, Options{Every: 1}).Enabled() {
		t.Error("expected snapshot sink to be enabled")
	}
	if !New(testBaseDir, fs, renderer, Options{Raw: true}).Enabled() {
		t.Error("expected raw sink to be enabled")
	}
}

func TestSink_SnapshotsEveryNthFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testBaseDir, fs, renderer, Options{Format: ports.FormatJPEG, Quality: 80, Every: 2})

	for i := 0; i < 5; i++ {
		if err := sink.SaveFrame("cam1", i, testFrame(4, 2, 12, byte(i))); err != nil {
			t.Fatalf("SaveFrame(%d) failed: %v", i, err)
		}
	}

	files := fs.GetAllFiles()
	if len(files) != 3 {
		t.Fatalf("expected 3 snapshots, got %d: %v", len(files), files)
	}
	for _, name := range []string{"frame-000000.jpg", "frame-000002.jpg", "frame-000004.jpg"} {
		path := filepath.Join(testBaseDir, "cam1", name)
		data, ok := fs.GetFile(path)
		if !ok {
			t.Errorf("expected snapshot at %s", path)
			continue
		}
		// mock renderer encodes format and size
		if !bytes.Equal(data, []byte{byte(ports.FormatJPEG), 4, 2}) {
			t.Errorf("unexpected snapshot contents %v", data)
		}
	}
}

func TestSink_SnapshotResizeAndAnnotate(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	var resized []image.Point
	renderer.ResizeImageFunc = func(img image.Image, width, height int) image.Image {
		resized = append(resized, image.Pt(width, height))
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	sink := New(testBaseDir, fs, renderer, Options{Every: 1, MaxWidth: 64, Annotate: true})

	if err := sink.SaveFrame("cam/2", 7, testFrame(128, 72, 384, 1)); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	if len(resized) != 1 || resized[0] != image.Pt(64, 36) {
		t.Errorf("expected one resize to 64x36, got %v", resized)
	}
	if len(renderer.Annotations) != 1 || renderer.Annotations[0] != "cam/2 #7 128x72" {
		t.Errorf("unexpected annotations %v", renderer.Annotations)
	}
	path := filepath.Join(testBaseDir, "cam_2", "frame-000007.png")
	if _, ok := fs.GetFile(path); !ok {
		t.Errorf("expected snapshot at %s", path)
	}
}

func TestSink_RawDumpStripsPadding(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{}, Options{Raw: true})

	// 2x2 frame with 2 bytes of padding per row
	if err := sink.SaveFrame("cam1", 0, testFrame(2, 2, 8, 0xAA)); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if err := sink.SaveFrame("cam1", 1, testFrame(2, 2, 6, 0xBB)); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if err := sink.Finish("cam1"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "cam1.bgr24")
	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected raw dump at %s", path)
	}
	expected := append(bytes.Repeat([]byte{0xAA}, 12), bytes.Repeat([]byte{0xBB}, 12)...)
	if !bytes.Equal(data, expected) {
		t.Errorf("expected %v, got %v", expected, data)
	}

	// finishing twice is harmless
	if err := sink.Finish("cam1"); err != nil {
		t.Errorf("second Finish failed: %v", err)
	}
}

func TestSink_ConcurrentStreams(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{}, Options{Raw: true})

	streams := []string{"a", "b", "c", "d"}
	var wg sync.WaitGroup
	for _, stream := range streams {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := sink.SaveFrame(stream, i, testFrame(2, 1, 6, byte(i))); err != nil {
					t.Errorf("SaveFrame(%s, %d) failed: %v", stream, i, err)
				}
			}
			if err := sink.Finish(stream); err != nil {
				t.Errorf("Finish(%s) failed: %v", stream, err)
			}
		}()
	}
	wg.Wait()

	for _, stream := range streams {
		data, ok := fs.GetFile(filepath.Join(testBaseDir, stream+".bgr24"))
		if !ok || len(data) != 60 {
			t.Errorf("stream %s: expected 60 raw bytes, got %d", stream, len(data))
		}
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cam1", "cam1"},
		{"rtp://0.0.0.0:5004", "rtp___0.0.0.0_5004"},
		{"../etc", "_etc"},
		{"..", "stream"},
		{"", "stream"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.input); got != tt.expected {
			t.Errorf("SafeName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
