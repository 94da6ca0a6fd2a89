package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/shouni/go-movie-kit/internal/config"
	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/compose"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/scenario"
	"github.com/shouni/go-movie-kit/pkg/timeline"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// ComposeRunner は、フレーズ列と素材ファイルから合成ディスクリプタを組み立てて
// 保存する構造体なのだ。保存先は Writer に委ねるため gs:// にも対応します。
type ComposeRunner struct {
	composer *compose.Builder      // タイムライン計算とディスクリプタ組み立ての実体
	writer   remoteio.OutputWriter // ディスクリプタの保存先
}

// NewComposeRunner は、ComposeRunnerの新しいインスタンスを生成して返すのだ。
func NewComposeRunner(composer *compose.Builder, writer remoteio.OutputWriter) *ComposeRunner {
	return &ComposeRunner{
		composer: composer,
		writer:   writer,
	}
}

// ComposeParams は合成ステージへの入力一式です。
type ComposeParams struct {
	Script   *domain.Script
	Personas []domain.Persona
	Phrases  []domain.Phrase // フィルタ前・OriginalIndex採番済み
	RunID    string

	SceneRange    *scenario.SceneRange // nil なら全編
	Profile       *config.RenderProfile
	OutputDir     string
	StrictPersona bool
}

// Run はシーン範囲の適用、タイムライン計算、ディスクリプタの組み立てと保存を
// 一気に行い、保存先のパスを返すのだ。
func (cr *ComposeRunner) Run(ctx context.Context, params ComposeParams) (string, error) {
	phrases := params.SceneRange.Apply(params.Phrases)
	if len(phrases) == 0 {
		return "", &domain.InputValidationError{
			Field:  "scene",
			Reason: "指定された範囲に該当するフレーズがありません",
		}
	}

	profile := params.Profile
	title := profile.Title
	if title == "" {
		title = params.Script.Title
	}

	desc, err := cr.composer.Build(ctx, compose.Params{
		Title:  title,
		RunID:  params.RunID,
		FPS:    profile.FPS,
		Width:  profile.Width,
		Height: profile.Height,
		Pauses: timeline.PauseConfig{
			Initial: profile.Pauses.Initial,
			Slide:   profile.Pauses.Slide,
			Speaker: profile.Pauses.Speaker,
			Ending:  profile.Pauses.Ending,
		},
		Phrases:       phrases,
		Personas:      params.Personas,
		Sections:      params.Script.Sections,
		OutputDir:     params.OutputDir,
		AudioDir:      filepath.Join(params.OutputDir, asset.DefaultAudioDir),
		SlideDir:      filepath.Join(params.OutputDir, asset.DefaultSlideDir),
		Transition:    transitionConfig(profile),
		Background:    backgroundConfig(profile),
		BGM:           bgmConfig(profile),
		StrictPersona: params.StrictPersona,
	})
	if err != nil {
		return "", err
	}

	// シーン範囲のラベルをファイル名へ織り込むことで、部分生成の成果物が
	// 全編のディスクリプタを上書きしないようにするのだ
	label := params.SceneRange.Label(len(params.Script.Sections))
	outputPath, err := asset.ResolveOutputPath(params.OutputDir, asset.DescriptorFileName(label))
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗したのだ: %w", err)
	}

	payload, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ディスクリプタのエンコードに失敗したのだ: %w", err)
	}

	if err := cr.writer.Write(ctx, outputPath, bytes.NewReader(payload), "application/json"); err != nil {
		return "", fmt.Errorf("ディスクリプタの保存に失敗したのだ (%s): %w", outputPath, err)
	}

	slog.Info("合成ディスクリプタを保存したのだ",
		"path", outputPath,
		"cues", len(desc.Cues),
		"total_duration", desc.TotalDuration)
	return outputPath, nil
}

// transitionConfig は描画プロファイルのトランジション指定をディスクリプタ形式へ写すのだ。
func transitionConfig(profile *config.RenderProfile) *compose.TransitionConfig {
	if profile.Transition == nil {
		return nil
	}
	return &compose.TransitionConfig{
		Type:           profile.Transition.Type,
		DurationFrames: profile.Transition.DurationFrames,
		Curve:          profile.Transition.Curve,
	}
}

func backgroundConfig(profile *config.RenderProfile) *compose.BackgroundConfig {
	if profile.Background == nil {
		return nil
	}
	return &compose.BackgroundConfig{
		Type: profile.Background.Type,
		Path: profile.Background.Path,
		Fit:  profile.Background.Fit,
	}
}

func bgmConfig(profile *config.RenderProfile) *compose.BGMConfig {
	if profile.BGM == nil {
		return nil
	}
	return &compose.BGMConfig{
		Path:    profile.BGM.Path,
		Volume:  profile.BGM.Volume,
		FadeIn:  profile.BGM.FadeIn,
		FadeOut: profile.BGM.FadeOut,
		Loop:    profile.BGM.Loop,
	}
}
