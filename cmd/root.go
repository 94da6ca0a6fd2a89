package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-movie-kit/internal/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は全サブコマンドで共有される実行時パラメータなのだ。
var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.ScriptURL, "script-url", "u", "", "Webページからコンテンツを取得するためのURLなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.ScriptFile, "script-file", "f", "", "入力ファイルのパス（台本JSONまたはソーステキスト）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.PersonaConfig, "personas", "c", config.DefaultPersonasFile, "話者の声・字幕色・立ち絵を定義したJSONパスなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.WordsFile, "words-file", "", "手動の発音辞書JSONのパス（最優先で登録されるのだ）。")
	rootCmd.PersistentFlags().StringVar(&opts.ProfileFile, "profile", "", "描画プロファイル（TOML）のパスなのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物の保存先ディレクトリ（ローカル or gs://...）なのだ。")

	// --- 合成・組み立ての挙動設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.SceneRange, "scene", "s", "", "部分生成するシーン範囲なのだ（例: 3 / 2-5 / 4- / -3）。")
	rootCmd.PersistentFlags().BoolVar(&opts.StrictPersona, "strict-persona", false, "未設定の話者IDを致命的エラーにするのだ。")
	rootCmd.PersistentFlags().IntVar(&opts.MaxChars, "max-chars", config.DefaultMaxChars, "フレーズ分割の目安文字数なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.SlideLimit, "slide-limit", "p", config.DefaultSlideLimit, "生成するスライドの最大枚数を指定するのだ（0は無制限）。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Mode, "mode", "m", "dialogue", "台本プロンプトのモードなのだ（solo / dialogue）。")
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "スライド生成に使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.EngineURL, "engine-url", "", "VOICEVOX 互換エンジンのURLなのだ（省略時は VOICEVOX_URL）。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを使うコマンドだけ、APIキーの存在チェックを行うのだ
	switch cmd.Name() {
	case "generate", "script", "voice":
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
		}
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ap-movie-go",
		addAppFlags,
		preRunAppE,
		generateCmd,
		scriptCmd,
		voiceCmd,
		composeCmd,
		planCmd,
	)
}

// loadRuntimeConfig は環境変数の設定へCLIフラグの上書きを反映するのだ。
func loadRuntimeConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	if opts.EngineURL != "" {
		cfg.EngineURL = opts.EngineURL
	}
	cfg.Options = opts
	return cfg
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
