package compose

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/timeline"
	"github.com/shouni/go-movie-kit/pkg/voice"
)

// durationTolerance は宣言された長さと実測の許容差（秒）です。
// これを超える食い違いは黙って吸収せず、ステージ単位のエラーにするのだ。
const durationTolerance = 0.05

// Params はディスクリプタ組み立てに必要な入力一式です。
type Params struct {
	Title   string
	RunID   string
	FPS     int
	Width   int
	Height  int
	Pauses  timeline.PauseConfig
	Phrases []domain.Phrase // フィルタ済み・OriginalIndex採番済み

	Personas []domain.Persona // 宣言順
	Sections []domain.Section // セクション背景の参照用

	OutputDir string // ディスクリプタの置き場所。相対パスの基準になる
	AudioDir  string
	SlideDir  string

	Transition    *TransitionConfig
	Background    *BackgroundConfig
	BGM           *BGMConfig
	StrictPersona bool
}

// Builder は合成ディスクリプタを組み立てる実体です。
// 動画背景の長さ計測だけ外部のプローバーへ委譲するのだ。
type Builder struct {
	prober VideoProber
}

// NewBuilder は Builder を初期化するのだ。
func NewBuilder(prober VideoProber) *Builder {
	return &Builder{prober: prober}
}

// Build は素材の実在確認・長さ解決・タイミング計算・立ち位置決定を経て、
// レンダラー向けのディスクリプタを組み立てます。
//
// 冪等性の規則: 連番つき成果物を生成するステージは、まず既存の空でない
// ファイルを探して再利用する。欠けた音声は文字数から見積もった無音で
// 補い、欠けたスライドは単に省略するのだ。
func (b *Builder) Build(ctx context.Context, params Params) (*CompositionDescriptor, error) {
	if len(params.Phrases) == 0 {
		return nil, &domain.InputValidationError{Field: "phrases", Reason: "フレーズが1つもありません"}
	}

	phrases := make([]domain.Phrase, len(params.Phrases))
	copy(phrases, params.Phrases)

	// 1. 各フレーズの音声素材を解決し、長さを確定させる
	if err := b.resolveAudio(phrases, params); err != nil {
		return nil, err
	}

	// 2. タイミング計算（純粋・決定的）
	total := timeline.AssignTimes(phrases, params.Pauses)

	// 3. 立ち位置の決定
	positions := timeline.AssignPositions(params.Personas)
	personasMap := domain.BuildPersonasMap(params.Personas)

	// 4. キューの組み立て
	cues := make([]Cue, 0, len(phrases))
	for _, p := range phrases {
		cue, err := b.buildCue(p, params, personasMap, positions)
		if err != nil {
			return nil, err
		}
		cues = append(cues, cue)
	}

	// 5. 背景（動画ならネイティブ周期を出力フレーム数へ変換する）
	background, err := b.resolveBackground(ctx, params)
	if err != nil {
		return nil, err
	}

	return &CompositionDescriptor{
		RunID:         params.RunID,
		Title:         params.Title,
		FPS:           params.FPS,
		Width:         params.Width,
		Height:        params.Height,
		TotalDuration: total,
		Cues:          cues,
		Transition:    params.Transition,
		Background:    background,
		BGM:           params.BGM,
	}, nil
}

// resolveAudio は音声ファイルの実在を確認し、フレーズの長さを実測で確定させるのだ。
// 欠けている場合は無音プレースホルダを生成して差し込みます。
func (b *Builder) resolveAudio(phrases []domain.Phrase, params Params) error {
	if err := os.MkdirAll(params.AudioDir, 0o755); err != nil {
		return fmt.Errorf("音声ディレクトリの作成に失敗したのだ: %w", err)
	}

	for i := range phrases {
		p := &phrases[i]
		path := filepath.Join(params.AudioDir, asset.AudioFileName(p.OriginalIndex))

		if !asset.Reusable(path) {
			// 欠けた音声は文字数から見積もった無音で補うのだ
			seconds := voice.SilenceDurationForText(p.Text)
			slog.Warn("音声素材が見つからないため無音で代替するのだ",
				"index", p.OriginalIndex, "path", path, "seconds", seconds)
			if err := voice.WriteSilence(path, seconds); err != nil {
				return &domain.AssetMissingError{
					Kind: "audio", Path: path, Index: p.OriginalIndex,
					Reason: fmt.Sprintf("無音プレースホルダの生成に失敗: %v", err),
				}
			}
		}

		measured, err := voice.WAVFileDuration(path)
		if err != nil {
			return &domain.AssetMissingError{
				Kind: "audio", Path: path, Index: p.OriginalIndex,
				Reason: fmt.Sprintf("長さ計測に失敗: %v", err),
			}
		}

		if p.Duration > 0 && math.Abs(p.Duration-measured) > durationTolerance {
			// 宣言と実体の食い違いは黙って吸収しない
			return &domain.AssetMissingError{
				Kind: "audio", Path: path, Index: p.OriginalIndex,
				Reason: fmt.Sprintf("宣言された長さ %.3f秒 と実測 %.3f秒 が一致しません", p.Duration, measured),
			}
		}
		p.Duration = measured
	}
	return nil
}

// buildCue は1フレーズぶんのキューを組み立てるのだ。
func (b *Builder) buildCue(
	p domain.Phrase,
	params Params,
	personasMap domain.PersonasMap,
	positions map[string]string,
) (Cue, error) {
	audioPath := filepath.Join(params.AudioDir, asset.AudioFileName(p.OriginalIndex))
	relAudio, err := asset.RendererRelative(params.OutputDir, audioPath)
	if err != nil {
		return Cue{}, err
	}

	cue := Cue{
		Text:          p.Text,
		AudioPath:     relAudio,
		SectionIndex:  p.SectionIndex,
		OriginalIndex: p.OriginalIndex,
		StartTime:     p.StartTime,
		Duration:      p.Duration,
	}

	// スライドは存在するときだけ添える。欠けていても組み立ては続行なのだ。
	slidePath := filepath.Join(params.SlideDir, asset.SlideFileName(p.SectionIndex))
	if asset.Reusable(slidePath) {
		relSlide, err := asset.RendererRelative(params.OutputDir, slidePath)
		if err != nil {
			return Cue{}, err
		}
		cue.SlidePath = relSlide
	} else {
		slog.Debug("スライドが存在しないため省略するのだ", "section", p.SectionIndex, "path", slidePath)
	}

	presentation, err := b.resolvePersona(p, params, personasMap, positions)
	if err != nil {
		return Cue{}, err
	}
	cue.Persona = presentation

	if p.SectionIndex < len(params.Sections) {
		cue.SectionBackground = params.Sections[p.SectionIndex].Background
	}

	return cue, nil
}

// resolvePersona はフレーズの話者参照を表示設定へ解決します。
// 未設定のIDは警告してデフォルト話者へフォールバックし、
// strict モードのときだけ致命的エラーにするのだ。
func (b *Builder) resolvePersona(
	p domain.Phrase,
	params Params,
	personasMap domain.PersonasMap,
	positions map[string]string,
) (*PersonaPresentation, error) {
	persona, found := personasMap[p.PersonaID]
	if !found {
		if p.PersonaID != "" {
			if params.StrictPersona {
				return nil, &domain.UnknownPersonaError{PersonaID: p.PersonaID, PhraseIndex: p.OriginalIndex}
			}
			slog.Warn("未設定の話者IDをデフォルト話者へフォールバックするのだ",
				"persona_id", p.PersonaID, "phrase", p.OriginalIndex)
		}
		fallback, ok := domain.DefaultPersona(params.Personas)
		if !ok {
			return nil, &domain.InputValidationError{Field: "personas", Reason: "話者が1人も設定されていません"}
		}
		persona = fallback
	}

	return &PersonaPresentation{
		ID:            persona.ID,
		Name:          persona.Name,
		SubtitleColor: persona.SubtitleColor,
		Position:      positions[persona.ID],
		Animation:     persona.Animation,
		Images:        persona.Images,
	}, nil
}

// resolveBackground は背景設定を確定させるのだ。動画背景の場合は
// ネイティブの長さを実測し、出力フレーム数へ変換して埋め込みます。
func (b *Builder) resolveBackground(ctx context.Context, params Params) (*BackgroundConfig, error) {
	if params.Background == nil {
		return nil, nil
	}

	resolved := *params.Background
	if resolved.Type == "video" && resolved.Path != "" && resolved.LoopFrames == 0 {
		seconds, err := b.prober.Duration(ctx, resolved.Path)
		if err != nil {
			return nil, &domain.ExternalServiceError{
				Stage: "background-probe",
				Err:   fmt.Errorf("背景動画の長さ計測に失敗したのだ (%s): %w", resolved.Path, err),
			}
		}
		resolved.LoopFrames = int(math.Round(seconds * float64(params.FPS)))
	}
	return &resolved, nil
}
