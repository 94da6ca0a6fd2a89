package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/shouni/go-movie-kit/internal/config"
	"github.com/shouni/go-movie-kit/internal/prompt"
	"github.com/shouni/go-movie-kit/internal/runner"
	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/compose"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/voice"

	"github.com/patrickmn/go-cache"
	imageKit "github.com/shouni/gemini-image-kit/pkg/adapters"
	"github.com/shouni/go-ai-client/v2/pkg/ai/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
	"google.golang.org/genai"
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeImageCore は各アダプターで共有する画像処理コアを生成します。
func InitializeImageCore(clientInterface httpkit.ClientInterface) imageKit.ImageGeneratorCore {
	// 参照画像のダウンロード結果を保持するキャッシュ
	imgCache := cache.New(30*time.Minute, 1*time.Hour)
	cacheTTL := 1 * time.Hour

	return imageKit.NewGeminiImageCore(
		clientInterface,
		imgCache,
		cacheTTL,
	)
}

// BuildScriptRunner はソース文章からの台本生成を担当する Runner を構築します。
func BuildScriptRunner(ctx context.Context, appCtx *AppContext) (runner.ScriptRunner, error) {
	promptBuilder, err := prompt.NewPromptBuilder(appCtx.Options.Mode)
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗したのだ: %w", err)
	}

	extractor, err := extract.NewExtractor(appCtx.httpClient)
	if err != nil {
		return nil, fmt.Errorf("エクストラクターの初期化に失敗したのだ: %w", err)
	}

	return runner.NewMovieScriptRunner(
		*appCtx.Config,
		extractor,
		promptBuilder,
		appCtx.aiClient,
		appCtx.Reader,
	), nil
}

// BuildVoiceRunner は発音辞書の準備と音声合成を担当する Runner を構築します。
//
// エンジンのユーザー辞書対応はここで一度だけ探索し、ケーパビリティフラグとして
// 固定します。呼び出しごとの再探索はしないのだ。
func BuildVoiceRunner(ctx context.Context, appCtx *AppContext, personas []domain.Persona) (*runner.VoiceRunner, error) {
	if len(personas) == 0 {
		return nil, &domain.InputValidationError{Field: "personas", Reason: "話者が1人も設定されていません"}
	}

	engineClient := voice.NewClient(appCtx.Config.EngineURL, config.DefaultEngineTimeout)

	appCtx.Config.Capabilities.UserDict = engineClient.ProbeUserDict(ctx)
	slog.Info("エンジンのケーパビリティを解決したのだ",
		"engine_url", appCtx.Config.EngineURL,
		"user_dict", appCtx.Config.Capabilities.UserDict)

	pool := voice.NewPool()
	for _, p := range personas {
		pool.Register(p.ID, voice.NewPersonaSynthesizer(engineClient, p, appCtx.Config.Capabilities.UserDict))
	}

	readingBuilder, err := prompt.NewReadingPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("読み検証プロンプトの初期化に失敗したのだ: %w", err)
	}

	return runner.NewVoiceRunner(
		pool,
		appCtx.aiClient,
		readingBuilder,
		appCtx.Config.GeminiModel,
		appCtx.Options.WordsFile,
		filepath.Join(appCtx.Options.OutputDir, asset.DefaultAudioDir),
	), nil
}

// BuildSlideRunner はセクションごとのスライド画像生成を担当する Runner を構築します。
func BuildSlideRunner(ctx context.Context, appCtx *AppContext) (*runner.SlideRunner, error) {
	core := InitializeImageCore(appCtx.httpClient)
	imageAdapter, err := imageKit.NewGeminiImageAdapter(
		core,
		appCtx.aiClient,
		appCtx.Config.GeminiImageModel,
		appCtx.Config.SlidePromptSuffix,
	)
	if err != nil {
		return nil, fmt.Errorf("画像アダプターの初期化に失敗しました: %w", err)
	}

	return runner.NewSlideRunner(
		imageAdapter,
		appCtx.Options.SlideLimit,
		filepath.Join(appCtx.Options.OutputDir, asset.DefaultSlideDir),
	), nil
}

// BuildComposeRunner はタイムライン計算と合成ディスクリプタの組み立てを担当する Runner を構築します。
func BuildComposeRunner(ctx context.Context, appCtx *AppContext) (*runner.ComposeRunner, error) {
	composer := compose.NewBuilder(compose.NewFFProbeProber())
	return runner.NewComposeRunner(composer, appCtx.Writer), nil
}
