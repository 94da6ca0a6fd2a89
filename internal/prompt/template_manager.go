package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/template"
)

const (
	ModeSolo     = "solo"
	ModeDialogue = "dialogue"
)

//go:embed solo.md
var SoloPrompt string

//go:embed dialogue.md
var DialoguePrompt string

//go:embed reading.md
var ReadingPrompt string

// modeTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var modeTemplates = map[string]string{
	ModeSolo:     SoloPrompt,
	ModeDialogue: DialoguePrompt,
}

// TemplateData はテンプレートへ埋め込む入力データです。
type TemplateData struct {
	InputText string
}

// PromptBuilder はAIに渡すプロンプトを構築するインターフェースなのだ。
type PromptBuilder interface {
	Build(data TemplateData) (string, error)
}

// templateBuilder は text/template ベースの PromptBuilder 実装です。
type templateBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder は、指定されたモードの台本生成テンプレートからビルダーを生成するのだ。
func NewPromptBuilder(mode string) (PromptBuilder, error) {
	content, err := GetPromptByMode(mode)
	if err != nil {
		return nil, err
	}
	return newTemplateBuilder("script-"+mode, content)
}

// NewReadingPromptBuilder は、読み検証パス用のテンプレートからビルダーを生成するのだ。
func NewReadingPromptBuilder() (PromptBuilder, error) {
	if ReadingPrompt == "" {
		return nil, fmt.Errorf("読み検証のプロンプトテンプレートが空なのだ。embed設定を確認してほしいのだ")
	}
	return newTemplateBuilder("reading", ReadingPrompt)
}

func newTemplateBuilder(name, content string) (PromptBuilder, error) {
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("プロンプトテンプレート '%s' のパースに失敗したのだ: %w", name, err)
	}
	return &templateBuilder{tmpl: tmpl}, nil
}

// Build はテンプレートへ入力テキストを埋め込んでプロンプトを組み立てます。
func (b *templateBuilder) Build(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("プロンプトの組み立てに失敗したのだ: %w", err)
	}
	return buf.String(), nil
}

// GetPromptByMode は、指定されたモードに対応するプロンプト文字列を返すのだ。
func GetPromptByMode(mode string) (string, error) {
	content, ok := modeTemplates[mode]
	if !ok {
		supported := slices.Collect(maps.Keys(modeTemplates))
		slices.Sort(supported)

		return "", fmt.Errorf("サポートされていないモード: '%s'。サポートされているモードは [%s] です",
			mode, strings.Join(supported, ", "))
	}

	if content == "" {
		return "", fmt.Errorf("モード '%s' に対応するプロンプトテンプレートが空なのだ。embed設定を確認してほしいのだ", mode)
	}

	return content, nil
}
