package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-movie-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// composeCmd は、既存の素材から合成ディスクリプタの組み立てのみを実行するのだ。
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "既存の素材から合成ディスクリプタを組み立てるのだ。",
	Long: `既存の台本JSONと音声・スライド素材からタイムラインを確定し、
外部レンダラーへ渡す合成ディスクリプタ（JSON）を組み立てるのだ。
欠けた音声は文字数ぶんの無音で補われ、欠けたスライドは省略されるのだよ。`,
	RunE: composeCommand,
}

func composeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadRuntimeConfig()

	slog.Info("ディスクリプタ組み立てモードを起動するのだ！",
		"script_file", opts.ScriptFile,
		"scene", opts.SceneRange,
		"strict_persona", opts.StrictPersona)

	if err := pipeline.ExecuteComposeOnly(ctx, cfg); err != nil {
		return fmt.Errorf("ディスクリプタ組み立て中にエラーが発生したのだ: %w", err)
	}
	return nil
}
