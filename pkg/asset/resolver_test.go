package asset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileNaming(t *testing.T) {
	cases := []struct {
		name     string
		got      string
		expected string
	}{
		{"音声はOriginalIndexで4桁ゼロ詰めなのだ", AudioFileName(7), "voice_0007.wav"},
		{"音声の大きな連番なのだ", AudioFileName(1234), "voice_1234.wav"},
		{"スライドはセクション番号で3桁ゼロ詰めなのだ", SlideFileName(0), "slide_000.png"},
		{"スライドの2桁なのだ", SlideFileName(42), "slide_042.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Errorf("期待値 %q, 実際の値 %q", tc.expected, tc.got)
			}
		})
	}

	t.Run("命名と正規表現が一致するのだ", func(t *testing.T) {
		if !AudioFileRegex.MatchString(AudioFileName(3)) {
			t.Error("音声ファイル名が正規表現に一致しないのだ")
		}
		if !SlideFileRegex.MatchString(SlideFileName(3)) {
			t.Error("スライドファイル名が正規表現に一致しないのだ")
		}
	})
}

func TestDescriptorFileName(t *testing.T) {
	if got := DescriptorFileName(""); got != "composition.json" {
		t.Errorf("ラベルなしの名前が違うのだ: %q", got)
	}
	if got := DescriptorFileName("scene2-3"); got != "composition_scene2-3.json" {
		t.Errorf("ラベル付きの名前が違うのだ: %q", got)
	}
}

func TestReusable(t *testing.T) {
	dir := t.TempDir()

	t.Run("存在しないファイルは再利用できないのだ", func(t *testing.T) {
		if Reusable(filepath.Join(dir, "missing.wav")) {
			t.Error("存在しないファイルが再利用可能と判定されたのだ")
		}
	})

	t.Run("空ファイルは再利用できないのだ", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.wav")
		if err := os.WriteFile(empty, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if Reusable(empty) {
			t.Error("空ファイルが再利用可能と判定されたのだ")
		}
	})

	t.Run("中身のあるファイルは再利用できるのだ", func(t *testing.T) {
		full := filepath.Join(dir, "voice_0001.wav")
		if err := os.WriteFile(full, []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
		if !Reusable(full) {
			t.Error("中身のあるファイルが再利用不可と判定されたのだ")
		}
	})
}

func TestRendererRelative(t *testing.T) {
	rel, err := RendererRelative("/out", "/out/audio/voice_0001.wav")
	if err != nil {
		t.Fatal(err)
	}
	if rel != "audio/voice_0001.wav" {
		t.Errorf("相対パスが違うのだ: %q", rel)
	}
}
