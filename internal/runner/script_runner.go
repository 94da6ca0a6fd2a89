package runner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-movie-kit/internal/config"
	"github.com/shouni/go-movie-kit/internal/prompt"
	"github.com/shouni/go-movie-kit/pkg/domain"

	"github.com/shouni/go-ai-client/v2/pkg/ai/gemini"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
)

// ScriptRunner は、ソース文章からナレーション台本を生成するインターフェースなのだ。
type ScriptRunner interface {
	// Run は台本生成パイプラインを実行し、検証済みの台本を返すのだ。
	Run(ctx context.Context) (*domain.Script, error)
}

// MovieScriptRunner は、ドキュメントからナレーション台本を生成する核となる構造体なのだ。
type MovieScriptRunner struct {
	cfg           config.Config          // 実行時のコマンドライン引数や設定
	extractor     *extract.Extractor     // Webサイトから本文を抽出するエクストラクター
	promptBuilder prompt.PromptBuilder   // AIに渡すプロンプトを構築するビルダー
	aiClient      gemini.GenerativeModel // Gemini APIと通信するクライアント
	reader        remoteio.InputReader   // ローカルやGCSのファイルを読み込むリーダー
}

// NewMovieScriptRunner は、MovieScriptRunnerの新しいインスタンスを生成して返すのだ。
func NewMovieScriptRunner(
	cfg config.Config,
	ext *extract.Extractor,
	pb prompt.PromptBuilder,
	ai gemini.GenerativeModel,
	r remoteio.InputReader,
) *MovieScriptRunner {
	return &MovieScriptRunner{
		cfg:           cfg,
		extractor:     ext,
		promptBuilder: pb,
		aiClient:      ai,
		reader:        r,
	}
}

// Run は、入力ソースの読み込み、プロンプト構築、AIによる生成、結果のパースを一気に行うのだ。
func (sr *MovieScriptRunner) Run(ctx context.Context) (*domain.Script, error) {
	// 1. 入力ソース（URL または ファイル）からテキストを読み込むのだ
	input, err := sr.readInputContent(ctx)
	if err != nil {
		return nil, err
	}

	// 2. 読み取ったテキストをテンプレートに埋め込んでプロンプトを作るのだ
	promptContent, err := sr.promptBuilder.Build(prompt.TemplateData{InputText: string(input)})
	if err != nil {
		return nil, err
	}

	// 3. Geminiを使って、ナレーション台本（JSON形式を期待）を生成させるのだ
	resp, err := sr.aiClient.GenerateContent(ctx, promptContent, sr.cfg.GeminiModel)
	if err != nil {
		return nil, &domain.ExternalServiceError{
			Stage: "script-generation",
			Err:   fmt.Errorf("台本の生成に失敗したのだ: %w", err),
		}
	}

	// 4. AIが返したテキストからJSON部分を抽出し、構造検証まで済ませるのだ
	script, err := sr.parseResponse(resp.Text)
	if err != nil {
		return nil, err
	}

	return script, nil
}

// readInputContent は、URLまたはパスの設定に基づいて適切な方法でソースデータを取得するのだ。
func (sr *MovieScriptRunner) readInputContent(ctx context.Context) ([]byte, error) {
	// URLが指定されている場合は、Webスクレイピングを実行するのだ
	if sr.cfg.Options.ScriptURL != "" {
		text, _, err := sr.extractor.FetchAndExtractText(ctx, sr.cfg.Options.ScriptURL)
		return []byte(text), err
	}
	// ファイルパスが指定されている場合は、リーダーを使って開くのだ（GCS等も対応！）
	rc, err := sr.reader.Open(ctx, sr.cfg.Options.ScriptFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseResponse は、AIが返したテキストからMarkdownのコードブロック等を除去してJSONとしてパースするのだ。
func (sr *MovieScriptRunner) parseResponse(raw string) (*domain.Script, error) {
	// 余計な空白や、AIが付けがちなMarkdownタグ (```json ... ```) を取り除く処理なのだ
	rawJSON := strings.TrimSpace(raw)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimSuffix(rawJSON, "```")
	rawJSON = strings.TrimSpace(rawJSON)

	script, err := domain.ParseScript([]byte(rawJSON))
	if err != nil {
		return nil, fmt.Errorf("生成された台本のパースに失敗したのだ: %w", err)
	}
	return script, nil
}
