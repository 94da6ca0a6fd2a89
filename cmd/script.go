package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-movie-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// scriptCmd は、台本の生成（JSON出力）のみを実行するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "ナレーション台本（JSON）のみを生成して保存するのだ。",
	Long: `ソースとなる文章を解析し、ナレーション台本（セクション、話者ごとの本文と
カタカナ読み、スライド指示、検証済み単語）をJSON形式で出力するのだ。
スライド生成や音声合成は行わないのだよ。`,
	RunE: scriptCommand,
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// 1. 入力ソースの必須チェック (opts は addAppFlags で紐付け済み)
	if opts.ScriptURL == "" && opts.ScriptFile == "" && !isStdin() {
		return fmt.Errorf("ソース（--script-url または --script-file）を指定してほしいのだ")
	}

	// 2. 設定のロード
	cfg := loadRuntimeConfig()

	slog.Info("台本生成モードを起動するのだ！",
		"mode", opts.Mode,
		"text_model", cfg.GeminiModel,
		"output", opts.OutputDir)

	// 3. 実行
	if err := pipeline.ExecuteScriptOnly(ctx, cfg); err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	slog.Info("台本（JSON）の生成が完了したのだ！", "output_dir", opts.OutputDir)
	return nil
}
