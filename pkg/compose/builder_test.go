package compose

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/timeline"
	"github.com/shouni/go-movie-kit/pkg/voice"
)

type fakeProber struct {
	seconds float64
	err     error
	called  int
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	f.called++
	return f.seconds, f.err
}

// testParams は2フレーズ構成の標準的な入力を組み立てるヘルパーなのだ。
func testParams(t *testing.T) Params {
	t.Helper()
	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	slideDir := filepath.Join(dir, "slides")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(slideDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// 既存の音声素材を用意しておく（再利用パス）
	if err := voice.WriteSilence(filepath.Join(audioDir, asset.AudioFileName(0)), 1.2); err != nil {
		t.Fatal(err)
	}
	if err := voice.WriteSilence(filepath.Join(audioDir, asset.AudioFileName(1)), 0.9); err != nil {
		t.Fatal(err)
	}

	return Params{
		Title:  "テスト動画",
		RunID:  "run-test",
		FPS:    30,
		Width:  1920,
		Height: 1080,
		Pauses: timeline.PauseConfig{Initial: 1.0, Slide: 1.0, Speaker: 0.5, Ending: 2.0},
		Phrases: []domain.Phrase{
			{Text: "こんにちは。", Reading: "コンニチワ", SectionIndex: 0, OriginalIndex: 0, PersonaID: "zundamon"},
			{Text: "さようなら。", Reading: "サヨウナラ", SectionIndex: 1, OriginalIndex: 1, PersonaID: "zundamon"},
		},
		Personas: []domain.Persona{
			{ID: "zundamon", Name: "ずんだもん", SubtitleColor: "#8fce00"},
			{ID: "metan", Name: "四国めたん", SubtitleColor: "#ff66aa"},
		},
		Sections: []domain.Section{
			{Title: "前半"},
			{Title: "後半", Background: "assets/bg_override.png"},
		},
		OutputDir: dir,
		AudioDir:  audioDir,
		SlideDir:  slideDir,
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(&fakeProber{seconds: 10})

	t.Run("既存の音声を再利用してタイムラインが組まれるのだ", func(t *testing.T) {
		params := testParams(t)
		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatalf("組み立てに失敗したのだ: %v", err)
		}

		if len(desc.Cues) != 2 {
			t.Fatalf("キュー数が違うのだ: %d", len(desc.Cues))
		}
		// 開始時刻 = [0+1.0, 1.2+1.0]（セクション境界はslide_pause）
		if math.Abs(desc.Cues[0].StartTime-1.0) > 0.02 || math.Abs(desc.Cues[1].StartTime-2.2) > 0.02 {
			t.Errorf("開始時刻が違うのだ: %f, %f", desc.Cues[0].StartTime, desc.Cues[1].StartTime)
		}
		if math.Abs(desc.TotalDuration-5.1) > 0.02 {
			t.Errorf("総尺が違うのだ: %f", desc.TotalDuration)
		}
	})

	t.Run("素材パスは常に相対なのだ", func(t *testing.T) {
		params := testParams(t)
		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		for _, cue := range desc.Cues {
			if filepath.IsAbs(cue.AudioPath) || strings.Contains(cue.AudioPath, "\\") {
				t.Errorf("音声パスが相対になっていないのだ: %q", cue.AudioPath)
			}
		}
		if desc.Cues[0].AudioPath != "audio/voice_0000.wav" {
			t.Errorf("音声の相対パスが違うのだ: %q", desc.Cues[0].AudioPath)
		}
	})

	t.Run("欠けた音声は文字数ぶんの無音で補われるのだ", func(t *testing.T) {
		params := testParams(t)
		// 2番目の音声を消してしまうのだ
		missing := filepath.Join(params.AudioDir, asset.AudioFileName(1))
		if err := os.Remove(missing); err != nil {
			t.Fatal(err)
		}

		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatalf("無音フォールバックに失敗したのだ: %v", err)
		}

		// 「さようなら。」は6文字なので 6 × SilenceSecondsPerRune
		expected := 6 * voice.SilenceSecondsPerRune
		if math.Abs(desc.Cues[1].Duration-expected) > 0.02 {
			t.Errorf("無音の尺が違うのだ: 期待値 %f, 実際の値 %f", expected, desc.Cues[1].Duration)
		}
		if !asset.Reusable(missing) {
			t.Error("プレースホルダが書き出されていないのだ")
		}
	})

	t.Run("欠けたスライドは省略され、あるスライドは添えられるのだ", func(t *testing.T) {
		params := testParams(t)
		slidePath := filepath.Join(params.SlideDir, asset.SlideFileName(0))
		if err := os.WriteFile(slidePath, []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}

		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		if desc.Cues[0].SlidePath != "slides/slide_000.png" {
			t.Errorf("スライドパスが違うのだ: %q", desc.Cues[0].SlidePath)
		}
		if desc.Cues[1].SlidePath != "" {
			t.Errorf("欠けたスライドが省略されていないのだ: %q", desc.Cues[1].SlidePath)
		}
	})

	t.Run("宣言と実測の食い違いはエラーになるのだ", func(t *testing.T) {
		params := testParams(t)
		params.Phrases[0].Duration = 9.9 // 実体は1.2秒

		_, err := builder.Build(context.Background(), params)
		var aErr *domain.AssetMissingError
		if !errors.As(err, &aErr) {
			t.Fatalf("AssetMissingError が返りませんでした: %v", err)
		}
	})

	t.Run("セクション背景の上書きがキューへ伝わるのだ", func(t *testing.T) {
		params := testParams(t)
		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		if desc.Cues[1].SectionBackground != "assets/bg_override.png" {
			t.Errorf("背景上書きが伝わっていないのだ: %q", desc.Cues[1].SectionBackground)
		}
	})
}

func TestBuilder_PersonaResolution(t *testing.T) {
	builder := NewBuilder(&fakeProber{seconds: 10})

	t.Run("未設定の話者はデフォルト話者へフォールバックするのだ", func(t *testing.T) {
		params := testParams(t)
		params.Phrases[1].PersonaID = "ghost"

		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatalf("フォールバックに失敗したのだ: %v", err)
		}
		if desc.Cues[1].Persona.ID != "zundamon" {
			t.Errorf("フォールバック先が違うのだ: %q", desc.Cues[1].Persona.ID)
		}
	})

	t.Run("strictモードでは未設定の話者が致命的エラーなのだ", func(t *testing.T) {
		params := testParams(t)
		params.Phrases[1].PersonaID = "ghost"
		params.StrictPersona = true

		_, err := builder.Build(context.Background(), params)
		var uErr *domain.UnknownPersonaError
		if !errors.As(err, &uErr) {
			t.Fatalf("UnknownPersonaError が返りませんでした: %v", err)
		}
	})

	t.Run("立ち位置は宣言順で解決されるのだ", func(t *testing.T) {
		params := testParams(t)
		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		if desc.Cues[0].Persona.Position != domain.PositionLeft {
			t.Errorf("立ち位置が違うのだ: %q", desc.Cues[0].Persona.Position)
		}
	})
}

func TestBuilder_Background(t *testing.T) {
	t.Run("動画背景はネイティブ周期が出力フレーム数へ変換されるのだ", func(t *testing.T) {
		prober := &fakeProber{seconds: 10.5}
		builder := NewBuilder(prober)

		params := testParams(t)
		params.Background = &BackgroundConfig{Type: "video", Path: "assets/bg_loop.mp4"}

		desc, err := builder.Build(context.Background(), params)
		if err != nil {
			t.Fatal(err)
		}
		if prober.called != 1 {
			t.Errorf("プローブ回数が違うのだ: %d", prober.called)
		}
		// 10.5秒 × 30fps = 315フレーム
		if desc.Background.LoopFrames != 315 {
			t.Errorf("ループフレーム数が違うのだ: %d", desc.Background.LoopFrames)
		}
		// 入力のconfigは書き換えないのだ
		if params.Background.LoopFrames != 0 {
			t.Error("入力のBackgroundConfigが書き換えられたのだ")
		}
	})

	t.Run("画像背景はプローブされないのだ", func(t *testing.T) {
		prober := &fakeProber{seconds: 10}
		builder := NewBuilder(prober)

		params := testParams(t)
		params.Background = &BackgroundConfig{Type: "image", Path: "assets/bg.png"}

		if _, err := builder.Build(context.Background(), params); err != nil {
			t.Fatal(err)
		}
		if prober.called != 0 {
			t.Errorf("画像背景でプローブが呼ばれたのだ: %d", prober.called)
		}
	})

	t.Run("プローブの失敗はExternalServiceErrorなのだ", func(t *testing.T) {
		prober := &fakeProber{err: errors.New("ffprobe not found")}
		builder := NewBuilder(prober)

		params := testParams(t)
		params.Background = &BackgroundConfig{Type: "video", Path: "assets/bg_loop.mp4"}

		_, err := builder.Build(context.Background(), params)
		var eErr *domain.ExternalServiceError
		if !errors.As(err, &eErr) {
			t.Fatalf("ExternalServiceError が返りませんでした: %v", err)
		}
	})
}
