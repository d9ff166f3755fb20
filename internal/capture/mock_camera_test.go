package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

// readN reads n frames and returns how many succeeded before the first error.
func readN(cam Camera, n int) (int, error) {
	for i := 0; i < n; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			return i, err
		}
		f.Close()
	}
	return n, nil
}

func TestMockCamera_Playback(t *testing.T) {
	a := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer b.Close()

	tests := []struct {
		name    string
		loop    bool
		reads   int
		wantOK  int
		wantErr bool
	}{
		{"once", false, 3, 2, true},
		{"loop", true, 7, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewMockCamera([]*gocv.Mat{&a, &b}, tt.loop)
			cam.Open()
			defer cam.Close()

			ok, err := readN(cam, tt.reads)
			if ok != tt.wantOK {
				t.Errorf("read %d frames, want %d", ok, tt.wantOK)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFrameUnavailable) {
				t.Errorf("err = %v, want ErrFrameUnavailable", err)
			}
		})
	}
}

func TestMockCamera_OpenRewinds(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, false)
	cam.Open()
	if ok, _ := readN(cam, 2); ok != 1 {
		t.Fatalf("first pass read %d frames, want 1", ok)
	}
	cam.Close()

	cam.Open()
	defer cam.Close()
	if ok, err := readN(cam, 1); ok != 1 {
		t.Errorf("after reopen: %v", err)
	}
}

func TestMockCamera_ReadsAreClones(t *testing.T) {
	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	got, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	got.SetUCharAt(0, 0, 200)
	got.Close()

	if v := frame.GetUCharAt(0, 0); v != 0 {
		t.Errorf("source frame modified: %d", v)
	}
}

func TestMockCamera_FailReads(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
	}

	cam.Open()
	defer cam.Close()
	cam.FailReads = 2

	for i := 0; i < 2; i++ {
		if _, err := cam.ReadFrame(); !errors.Is(err, ErrFrameUnavailable) {
			t.Errorf("read %d error = %v, want ErrFrameUnavailable", i, err)
		}
	}
	if _, err := readN(cam, 1); err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	if got := cam.Reads(); got != 3 {
		t.Errorf("Reads() = %d, want 3", got)
	}
	if w, h := cam.Size(); w != 160 || h != 120 {
		t.Errorf("Size() = %dx%d, want 160x120", w, h)
	}
}

func TestMockCamera_EmptySize(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if w, h := cam.Size(); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Size() = %dx%d, want defaults", w, h)
	}
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}
}
