package config

import (
	"time"

	"github.com/shouni/go-movie-kit/pkg/voice"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultEngineTimeout は音声合成1回あたりのタイムアウト。長文の合成は時間がかかるので長めなのだ。
	DefaultEngineTimeout = 120 * time.Second
	DefaultRateLimit     = 30 * time.Second
	DefaultSlideLimit    = 0 // 0 は無制限
	DefaultMaxChars      = 40
	DefaultPersonasFile  = "examples/personas.json"
	DefaultOutputDir     = "output"

	// DefaultSlidePromptSuffix は全スライド共通で適用する画風（スタイル）の指示なのだ。
	DefaultSlidePromptSuffix = "presentation slide illustration, clean flat design, soft colors, 16:9, no text, no watermark, high resolution"
)

// Config はアプリケーション全体の環境設定（APIキーやエンジンURL）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	GeminiImageModel  string
	SlidePromptSuffix string
	EngineURL         string // VOICEVOX 互換エンジンのベースURL

	// Capabilities は起動時に一度だけ解決されるエンジンの対応機能なのだ。
	// 呼び出しごとの再探索はしない。
	Capabilities CapabilityFlags

	Options GenerateOptions
}

// CapabilityFlags は接続先エンジンが対応している機能のフラグです。
type CapabilityFlags struct {
	UserDict bool // ユーザー辞書（発音登録）API に対応しているか
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:       envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel:  envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		SlidePromptSuffix: envutil.GetEnv("SLIDE_PROMPT_SUFFIX", DefaultSlidePromptSuffix),
		EngineURL:         envutil.GetEnv("VOICEVOX_URL", voice.DefaultEngineURL),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	ScriptURL     string // --script-url
	ScriptFile    string // --script-file
	PersonaConfig string // --personas
	WordsFile     string // --words-file: 手動の発音辞書（最優先で登録される）
	ProfileFile   string // --profile: 描画プロファイル（TOML）

	// 生成結果の出力設定
	OutputDir string // --output-dir

	// 合成・組み立ての挙動設定
	SceneRange    string // --scene: "N" / "A-B" / "A-" / "-B"（1始まり・両端含む）
	StrictPersona bool   // --strict-persona: 未設定の話者IDを致命的エラーにする
	MaxChars      int    // --max-chars: フレーズ分割の目安文字数
	SlideLimit    int    // --slide-limit: 生成するスライドの最大枚数

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: スライド生成用のGeminiモデル
	Mode       string // --mode: 台本プロンプトのモード

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
	EngineURL   string        // --engine-url: VOICEVOX 互換エンジンのURL上書き
}
