package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-movie-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、台本生成から合成ディスクリプタまでの全工程を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "台本・スライド・音声・ディスクリプタを一気に生成しますなのだ。",
	Long: `ソースとなる文章を解析してナレーション台本を生成し、スライド画像、
音声ファイル、そしてレンダラー向けの合成ディスクリプタまでを一気に作るのだ。
既存の成果物があるディレクトリで再実行すれば、完了済みの素材はスキップされるのだよ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.ScriptURL == "" && opts.ScriptFile == "" && !isStdin() {
		return fmt.Errorf("ソース（--script-url または --script-file）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := loadRuntimeConfig()

	slog.Info("動画生成パイプラインを起動するのだ！",
		"mode", opts.Mode,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"engine_url", cfg.EngineURL,
		"output", opts.OutputDir)

	// 3. 更新した config を考慮しつつパイプラインを実行するのだ
	if err := pipeline.Execute(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
