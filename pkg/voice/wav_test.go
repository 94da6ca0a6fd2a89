package voice

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteSilenceAndMeasure(t *testing.T) {
	dir := t.TempDir()

	t.Run("書き出した無音の長さが実測と一致するのだ", func(t *testing.T) {
		path := filepath.Join(dir, "silence.wav")
		if err := WriteSilence(path, 1.5); err != nil {
			t.Fatalf("無音の書き出しに失敗したのだ: %v", err)
		}

		got, err := WAVFileDuration(path)
		if err != nil {
			t.Fatalf("長さ計測に失敗したのだ: %v", err)
		}
		if math.Abs(got-1.5) > 0.01 {
			t.Errorf("期待値 1.5秒, 実際の値 %f秒", got)
		}
	})

	t.Run("0以下の尺でも最低限の無音が書かれるのだ", func(t *testing.T) {
		path := filepath.Join(dir, "tiny.wav")
		if err := WriteSilence(path, 0); err != nil {
			t.Fatalf("無音の書き出しに失敗したのだ: %v", err)
		}
		got, err := WAVFileDuration(path)
		if err != nil {
			t.Fatal(err)
		}
		if got <= 0 {
			t.Errorf("長さが0のままなのだ: %f", got)
		}
	})
}

func TestSilenceDurationForText(t *testing.T) {
	// 文字数 × 1文字あたりの秒数で見積もるのだ
	got := SilenceDurationForText("コンニチワ")
	expected := 5 * SilenceSecondsPerRune
	if math.Abs(got-expected) > 1e-9 {
		t.Errorf("期待値 %f, 実際の値 %f", expected, got)
	}

	if SilenceDurationForText("") != 0 {
		t.Error("空文字の見積もりは0のはずなのだ")
	}
}

func TestWAVDuration_InvalidData(t *testing.T) {
	if _, err := WAVDuration([]byte("not a wav")); err == nil {
		t.Error("不正なデータでエラーが返らないのだ")
	}
}
