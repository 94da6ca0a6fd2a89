package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-movie-kit/internal/config"
	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/scenario"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// SlideAdapter は画像生成AI（Imagen/Gemini）へのアダプターなのだ。
type SlideAdapter interface {
	GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

// SlideRunner は、セクションごとのスライド画像を並列で生成する実体。
//
// スライドはセクション番号をキーに命名され、既存の空でないファイルは
// 再生成せずスキップされる。生成失敗はステージ単位のエラーで、
// 完了済みのスライドはそのまま残るのだ。
type SlideRunner struct {
	adapter  SlideAdapter // 画像生成AIへのアダプター
	limit    int          // 生成する最大スライド数の制限（0は無制限）
	slideDir string       // スライド画像の出力先
}

// NewSlideRunner は、SlideRunnerの新しいインスタンスを生成して返す。
func NewSlideRunner(adapter SlideAdapter, limit int, slideDir string) *SlideRunner {
	return &SlideRunner{
		adapter:  adapter,
		limit:    limit,
		slideDir: slideDir,
	}
}

// Run は並列処理を用いて、各セクションのスライド画像を生成するメインロジックなのだ。
// シーン範囲が指定されている場合、範囲外のセクションは生成しません。
func (sr *SlideRunner) Run(ctx context.Context, script *domain.Script, scene *scenario.SceneRange) error {
	if err := os.MkdirAll(sr.slideDir, 0o755); err != nil {
		return fmt.Errorf("スライドディレクトリの作成に失敗したのだ: %w", err)
	}

	sections := script.Sections
	// 指定があれば、生成するスライド数を制限するのだ（テスト用などに便利！）
	if sr.limit > 0 && len(sections) > sr.limit {
		slog.Info("スライド数に制限を適用したのだ", "limit", sr.limit, "total", len(sections))
		sections = sections[:sr.limit]
	}

	eg, egCtx := errgroup.WithContext(ctx)

	// 設定ファイルから取得した間隔で、レートリミット（流量制限）をかけるのだ
	// Burst 2 により、開始直後に2枚までは同時にリクエストを開始できるのだ
	limiter := rate.NewLimiter(rate.Every(config.DefaultRateLimit), 2)
	slog.Info("並列スライド生成を開始するのだ", "count", len(sections), "interval", config.DefaultRateLimit)

	for i, section := range sections {
		i, section := i, section // ゴルーチンのクロージャ対策なのだ

		if !scene.Contains(i) {
			continue
		}
		path := filepath.Join(sr.slideDir, asset.SlideFileName(i))
		if asset.Reusable(path) {
			slog.Info("既存のスライドを再利用するのだ", "section", i, "path", path)
			continue
		}
		if section.SlidePrompt == "" && section.SourceImageURL == "" {
			slog.Debug("スライド指定のないセクションをスキップするのだ", "section", i)
			continue
		}

		eg.Go(func() error {
			// 1. レートリミットに従って、自分の番が来るまで待機するのだ
			if err := limiter.Wait(egCtx); err != nil {
				return err
			}

			slog.Info("スライドを生成中...", "section", i+1, "title", section.Title)

			resp, err := sr.adapter.GenerateMangaPanel(egCtx, sr.buildRequest(section))
			if err != nil {
				slog.Error("スライド生成に失敗したのだ", "section", i+1, "error", err)
				return &domain.ExternalServiceError{
					Stage: "slide-generation",
					Err:   fmt.Errorf("セクション %d のスライド生成に失敗したのだ: %w", i, err),
				}
			}

			if err := os.WriteFile(path, resp.Data, 0o644); err != nil {
				return fmt.Errorf("スライドの書き出しに失敗したのだ (%s): %w", path, err)
			}
			slog.Info("スライド生成に成功したのだ", "section", i+1, "path", path)
			return nil
		})
	}

	// すべての並列処理が完了するのを待つのだ
	if err := eg.Wait(); err != nil {
		return err
	}

	slog.Info("すべてのスライドが揃ったのだ", "total", len(sections))
	return nil
}

// buildRequest はセクションの指定から画像生成リクエストを組み立てるのだ。
// source_image_url が指定されたセクションは、生成ではなく参照画像の
// 再構成としてアダプターに渡します。
func (sr *SlideRunner) buildRequest(section domain.Section) imagedom.ImageGenerationRequest {
	req := imagedom.ImageGenerationRequest{
		Prompt:         section.SlidePrompt,
		NegativePrompt: "text, watermark, signature, low quality, distorted",
		AspectRatio:    "16:9",
	}
	if section.SourceImageURL != "" {
		req.ReferenceURL = section.SourceImageURL
		req.Prompt = fmt.Sprintf("presentation slide based on the reference image: %s", section.Title)
	}
	return req
}
