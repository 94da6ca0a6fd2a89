package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-movie-kit/internal/builder"
	"github.com/shouni/go-movie-kit/internal/config"
	"github.com/shouni/go-movie-kit/internal/runner"
	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/scenario"
	"github.com/shouni/go-movie-kit/pkg/timeline"
	"github.com/shouni/go-movie-kit/pkg/voice"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// DefaultScriptName は台本ステージが出力するJSONのファイル名です。
const DefaultScriptName = "script.json"

// Execute は台本生成から合成ディスクリプタまでの全工程を実行するのだ。
//
// 各工程は成果物の既存ファイルを再利用するため、途中で失敗した実行を
// そのまま再実行すれば完了済みの成果物はスキップされます。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Phase 1: Script Phase (台本生成) ---
	script, err := runScriptStep(ctx, appCtx)
	if err != nil {
		return err
	}

	personas, scene, phrases, err := prepareScenario(appCtx, script)
	if err != nil {
		return err
	}

	// --- Phase 2: Slide Phase (スライド生成) ---
	if err := runSlideStep(ctx, appCtx, script, scene); err != nil {
		return err
	}

	// --- Phase 3: Voice Phase (辞書準備と音声合成) ---
	if err := runVoiceStep(ctx, appCtx, script, personas, scene.Apply(phrases)); err != nil {
		return err
	}

	// --- Phase 4: Compose Phase (タイムライン計算とディスクリプタ保存) ---
	if _, err := runComposeStep(ctx, appCtx, script, personas, phrases, scene); err != nil {
		return err
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

// ExecuteScriptOnly は台本の生成（JSON出力）のみを実行するのだ。
func ExecuteScriptOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	if _, err := runScriptStep(ctx, appCtx); err != nil {
		return err
	}
	return nil
}

// ExecuteVoiceOnly は、既存の台本JSONを読み込んで音声合成だけを実行するのだ。
func ExecuteVoiceOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	script, err := loadScript(ctx, appCtx)
	if err != nil {
		return err
	}

	personas, scene, phrases, err := prepareScenario(appCtx, script)
	if err != nil {
		return err
	}

	return runVoiceStep(ctx, appCtx, script, personas, scene.Apply(phrases))
}

// ExecuteComposeOnly は、既存の台本JSONと音声・スライド素材から
// 合成ディスクリプタの組み立てだけを実行するのだ。欠けた音声は無音で補われます。
func ExecuteComposeOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	script, err := loadScript(ctx, appCtx)
	if err != nil {
		return err
	}

	personas, scene, phrases, err := prepareScenario(appCtx, script)
	if err != nil {
		return err
	}

	path, err := runComposeStep(ctx, appCtx, script, personas, phrases, scene)
	if err != nil {
		return err
	}

	slog.Info("合成ディスクリプタの組み立てが完了したのだ！", "path", path)
	return nil
}

// ExecutePlan は合成を行わず、タイムラインの見積もりを表で表示するドライランなのだ。
// 既存の音声ファイルがあれば実測の長さを、なければ文字数からの見積もりを使います。
func ExecutePlan(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	script, err := loadScript(ctx, appCtx)
	if err != nil {
		return err
	}

	_, scene, phrases, err := prepareScenario(appCtx, script)
	if err != nil {
		return err
	}

	filtered := scene.Apply(phrases)
	if len(filtered) == 0 {
		return &domain.InputValidationError{Field: "scene", Reason: "指定された範囲に該当するフレーズがありません"}
	}

	audioDir := filepath.Join(appCtx.Options.OutputDir, asset.DefaultAudioDir)
	estimated := 0
	for i := range filtered {
		p := &filtered[i]
		path := filepath.Join(audioDir, asset.AudioFileName(p.OriginalIndex))
		if asset.Reusable(path) {
			if duration, err := voice.WAVFileDuration(path); err == nil {
				p.Duration = duration
				continue
			}
		}
		p.Duration = voice.SilenceDurationForText(p.Text)
		estimated++
	}

	profile := appCtx.Profile
	total := timeline.AssignTimes(filtered, timeline.PauseConfig{
		Initial: profile.Pauses.Initial,
		Slide:   profile.Pauses.Slide,
		Speaker: profile.Pauses.Speaker,
		Ending:  profile.Pauses.Ending,
	})

	renderPlanTable(filtered, total)
	if estimated > 0 {
		slog.Info("音声が未合成のフレーズは文字数からの見積もりなのだ", "estimated", estimated)
	}
	return nil
}

// renderPlanTable はタイムラインの見積もりを表形式で標準出力へ描画するのだ。
func renderPlanTable(phrases []domain.Phrase, total float64) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "scene", "persona", "start", "duration", "text"})

	for _, p := range phrases {
		name := p.PersonaName
		if name == "" {
			name = p.PersonaID
		}
		t.AppendRow(table.Row{
			p.OriginalIndex,
			p.SectionIndex + 1,
			name,
			fmt.Sprintf("%7.2fs", p.StartTime),
			fmt.Sprintf("%6.2fs", p.Duration),
			truncateRunes(p.Text, 28),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "total", fmt.Sprintf("%6.2fs", total), ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func truncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// ライフサイクル管理用の context と設定オブジェクトを受け取るのだ。
// 初期化中にエラーが発生した場合は、AppContext のポインタとエラーを返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpClient := httpkit.New(config.DefaultHTTPTimeout)
	aiClient, err := builder.InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai client: %w", err)
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	profile, err := config.LoadProfile(cfg.Options.ProfileFile)
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, profile, httpClient, aiClient, reader, writer)
	return &appCtx, nil
}

// prepareScenario は話者設定の読み込み、シーン範囲の解析、台本の平坦化をまとめて行うのだ。
// フレーズ列はフィルタ前の台本全体で OriginalIndex を採番済みです。
func prepareScenario(appCtx *builder.AppContext, script *domain.Script) ([]domain.Persona, *scenario.SceneRange, []domain.Phrase, error) {
	personas, err := domain.LoadPersonas(appCtx.Options.PersonaConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	var scene *scenario.SceneRange
	if appCtx.Options.SceneRange != "" {
		scene, err = scenario.ParseSceneRange(appCtx.Options.SceneRange)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	flattener := scenario.NewFlattener(appCtx.Options.MaxChars, domain.BuildPersonasMap(personas))
	phrases := flattener.Flatten(script)
	if len(phrases) == 0 {
		return nil, nil, nil, &domain.InputValidationError{Field: "script", Reason: "ナレーションが1つもありません"}
	}

	return personas, scene, phrases, nil
}

// loadScript は既存の台本JSONをリーダー経由で読み込むのだ（GCS等も対応！）。
func loadScript(ctx context.Context, appCtx *builder.AppContext) (*domain.Script, error) {
	path := appCtx.Options.ScriptFile
	if path == "" {
		path = filepath.Join(appCtx.Options.OutputDir, DefaultScriptName)
	}

	rc, err := appCtx.Reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("台本ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("台本ファイル '%s' の読み取りに失敗しました: %w", path, err)
	}
	return domain.ParseScript(data)
}

// runScriptStep は ScriptRunner で台本を生成し、JSONとして保存するのだ。
func runScriptStep(ctx context.Context, appCtx *builder.AppContext) (*domain.Script, error) {
	slog.Info("Phase 1: 台本生成を開始するのだ...", "model", appCtx.Config.GeminiModel)
	scriptRunner, err := builder.BuildScriptRunner(ctx, appCtx)
	if err != nil {
		return nil, fmt.Errorf("ScriptRunnerの構築に失敗したのだ: %w", err)
	}

	script, err := scriptRunner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("台本生成に失敗したのだ: %w", err)
	}

	if err := saveScript(ctx, appCtx, script); err != nil {
		return nil, err
	}
	return script, nil
}

// saveScript は生成された台本をJSONとして保存するのだ。
func saveScript(ctx context.Context, appCtx *builder.AppContext, script *domain.Script) error {
	outputPath, err := asset.ResolveOutputPath(appCtx.Options.OutputDir, DefaultScriptName)
	if err != nil {
		return fmt.Errorf("台本の出力パスの解決に失敗したのだ: %w", err)
	}

	payload, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return fmt.Errorf("台本のエンコードに失敗したのだ: %w", err)
	}

	if err := appCtx.Writer.Write(ctx, outputPath, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("台本の保存に失敗したのだ (%s): %w", outputPath, err)
	}

	slog.Info("台本を保存したのだ", "path", outputPath, "sections", len(script.Sections))
	return nil
}

// runSlideStep は SlideRunner でセクションごとのスライド画像を並列生成するのだ。
func runSlideStep(ctx context.Context, appCtx *builder.AppContext, script *domain.Script, scene *scenario.SceneRange) error {
	slog.Info("Phase 2: スライド生成を開始するのだ...", "sections", len(script.Sections))
	slideRunner, err := builder.BuildSlideRunner(ctx, appCtx)
	if err != nil {
		return fmt.Errorf("SlideRunnerの構築に失敗したのだ: %w", err)
	}

	if err := slideRunner.Run(ctx, script, scene); err != nil {
		return fmt.Errorf("スライド生成に失敗したのだ: %w", err)
	}
	return nil
}

// runVoiceStep は発音辞書を準備してから、話者単位の直列合成を実行するのだ。
func runVoiceStep(ctx context.Context, appCtx *builder.AppContext, script *domain.Script, personas []domain.Persona, phrases []domain.Phrase) error {
	slog.Info("Phase 3: 音声合成を開始するのだ...", "phrases", len(phrases))
	voiceRunner, err := builder.BuildVoiceRunner(ctx, appCtx, personas)
	if err != nil {
		return fmt.Errorf("VoiceRunnerの構築に失敗したのだ: %w", err)
	}

	dict, err := voiceRunner.PrepareDictionary(ctx, script)
	if err != nil {
		return fmt.Errorf("発音辞書の準備に失敗したのだ: %w", err)
	}
	slog.Info("発音辞書の準備が完了したのだ", "entries", dict.Len())

	if err := voiceRunner.Run(ctx, phrases); err != nil {
		return fmt.Errorf("音声合成に失敗したのだ: %w", err)
	}
	return nil
}

// runComposeStep は ComposeRunner でタイムラインを確定し、ディスクリプタを保存するのだ。
func runComposeStep(
	ctx context.Context,
	appCtx *builder.AppContext,
	script *domain.Script,
	personas []domain.Persona,
	phrases []domain.Phrase,
	scene *scenario.SceneRange,
) (string, error) {
	slog.Info("Phase 4: 合成ディスクリプタの組み立てを開始するのだ...")
	composeRunner, err := builder.BuildComposeRunner(ctx, appCtx)
	if err != nil {
		return "", fmt.Errorf("ComposeRunnerの構築に失敗したのだ: %w", err)
	}

	return composeRunner.Run(ctx, runner.ComposeParams{
		Script:        script,
		Personas:      personas,
		Phrases:       phrases,
		RunID:         uuid.NewString(),
		SceneRange:    scene,
		Profile:       appCtx.Profile,
		OutputDir:     appCtx.Options.OutputDir,
		StrictPersona: appCtx.Options.StrictPersona,
	})
}
