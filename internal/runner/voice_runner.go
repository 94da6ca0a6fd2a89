package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-movie-kit/internal/prompt"
	"github.com/shouni/go-movie-kit/pkg/asset"
	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/kana"
	"github.com/shouni/go-movie-kit/pkg/voice"

	"github.com/shouni/go-ai-client/v2/pkg/ai/gemini"
)

// VoiceRunner は、発音辞書の準備と話者単位の直列音声合成を担当する構造体なのだ。
//
// 合成器の Pool はこの Runner が所有し、グローバルには公開しない。
// 音声ファイルは OriginalIndex をキーに命名されるため、シーン範囲で
// フィルタされた再実行でも既存ファイルをそのまま再利用できるのだ。
type VoiceRunner struct {
	pool           *voice.Pool            // 話者IDごとの合成器
	aiClient       gemini.GenerativeModel // 読み検証パスに使うGeminiクライアント
	readingBuilder prompt.PromptBuilder   // 読み検証プロンプトのビルダー
	model          string                 // 読み検証に使うモデル名
	wordsFile      string                 // 手動の発音辞書ファイル（最優先）
	audioDir       string                 // 音声ファイルの出力先
}

// NewVoiceRunner は、VoiceRunnerの新しいインスタンスを生成して返すのだ。
func NewVoiceRunner(
	pool *voice.Pool,
	ai gemini.GenerativeModel,
	rb prompt.PromptBuilder,
	model string,
	wordsFile string,
	audioDir string,
) *VoiceRunner {
	return &VoiceRunner{
		pool:           pool,
		aiClient:       ai,
		readingBuilder: rb,
		model:          model,
		wordsFile:      wordsFile,
		audioDir:       audioDir,
	}
}

// PrepareDictionary は合成開始前に一度だけ発音辞書を組み立てるのだ。
//
// 登録は「手動ファイル → 台本同梱の検証済み単語 → AI解析」の順で行う。
// 辞書は先勝ちなので、この登録順そのものが優先順位になるのだ。
// 組み立て後、エンジンがユーザー辞書に対応していればエントリを一括登録します。
func (vr *VoiceRunner) PrepareDictionary(ctx context.Context, script *domain.Script) (*kana.Dictionary, error) {
	dict := kana.NewDictionary()

	// 1. 手動辞書（優先度10）: 利用者が明示した読みは何よりも優先するのだ
	if err := vr.addManualWords(dict); err != nil {
		return nil, err
	}

	// 2. 台本同梱の検証済み単語（優先度8）
	for _, w := range script.Words {
		if err := dict.AddEntry(w.Surface, w.Reading, w.Accent, kana.WordClassProperNoun, kana.PriorityVerified); err != nil {
			var pErr *domain.PronunciationError
			if errors.As(err, &pErr) {
				// 不正な読みはエントリを破棄するだけで処理は続行なのだ
				slog.Warn("検証済み単語を破棄したのだ", "surface", w.Surface, "error", err)
				continue
			}
			return nil, err
		}
	}

	// 3. AI解析（優先度5）: 失敗しても発音が粗くなるだけなので合成は続けるのだ
	morphemes, err := vr.analyzeReadings(ctx, script)
	if err != nil {
		slog.Warn("読み解析パスに失敗したため解析エントリなしで続行するのだ", "error", err)
	} else {
		added := dict.AddFromMorphemes(morphemes, kana.PriorityAnalyzed)
		slog.Info("読み解析の結果を辞書に登録したのだ", "analyzed", len(morphemes), "added", added)
	}

	vr.registerToEngine(ctx, dict)
	return dict, nil
}

// addManualWords は手動辞書ファイルを読み込み、最優先で登録するのだ。
func (vr *VoiceRunner) addManualWords(dict *kana.Dictionary) error {
	if vr.wordsFile == "" {
		return nil
	}

	data, err := os.ReadFile(vr.wordsFile)
	if err != nil {
		return fmt.Errorf("手動辞書ファイルの読み込みに失敗したのだ (%s): %w", vr.wordsFile, err)
	}

	var entries []kana.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("手動辞書ファイルのデコードに失敗したのだ (%s): %w", vr.wordsFile, err)
	}

	for _, e := range entries {
		wordClass := e.WordClass
		if wordClass == "" {
			wordClass = kana.WordClassProperNoun
		}
		// ファイル内の優先度指定にかかわらず手動エントリは最優先なのだ
		if err := dict.AddEntry(e.Surface, e.Reading, e.Accent, wordClass, kana.PriorityManual); err != nil {
			var pErr *domain.PronunciationError
			if errors.As(err, &pErr) {
				slog.Warn("手動エントリを破棄したのだ", "surface", e.Surface, "error", err)
				continue
			}
			return err
		}
	}
	return nil
}

// analyzeReadings はGeminiに台本全文を渡し、読み間違えやすい語の読みペアを抽出させるのだ。
func (vr *VoiceRunner) analyzeReadings(ctx context.Context, script *domain.Script) ([]kana.Morpheme, error) {
	var sb strings.Builder
	for _, section := range script.Sections {
		for _, turn := range section.Narrations {
			sb.WriteString(turn.Text)
			sb.WriteString("\n")
		}
	}

	promptContent, err := vr.readingBuilder.Build(prompt.TemplateData{InputText: sb.String()})
	if err != nil {
		return nil, err
	}

	resp, err := vr.aiClient.GenerateContent(ctx, promptContent, vr.model)
	if err != nil {
		return nil, fmt.Errorf("読み解析の生成に失敗したのだ: %w", err)
	}

	rawJSON := strings.TrimSpace(resp.Text)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimSuffix(rawJSON, "```")
	rawJSON = strings.TrimSpace(rawJSON)

	var pairs []struct {
		Surface string `json:"surface"`
		Reading string `json:"reading"`
	}
	if err := json.Unmarshal([]byte(rawJSON), &pairs); err != nil {
		return nil, fmt.Errorf("読み解析結果のパースに失敗したのだ: %w", err)
	}

	morphemes := make([]kana.Morpheme, 0, len(pairs))
	for _, p := range pairs {
		morphemes = append(morphemes, kana.Morpheme{Surface: p.Surface, Reading: p.Reading})
	}
	return morphemes, nil
}

// registerToEngine は辞書エントリをエンジンのユーザー辞書へ一括登録するのだ。
// 非対応エンジンでは何もしない。個別の登録失敗は警告に留めて続行します。
func (vr *VoiceRunner) registerToEngine(ctx context.Context, dict *kana.Dictionary) {
	ids := vr.pool.IDs()
	if len(ids) == 0 {
		return
	}
	synth, _ := vr.pool.Get(ids[0])
	if synth == nil || !synth.SupportsUserDict() {
		slog.Info("エンジンがユーザー辞書に非対応のため登録をスキップするのだ", "entries", dict.Len())
		return
	}

	for _, entry := range dict.Entries() {
		if err := synth.RegisterWord(ctx, entry); err != nil {
			slog.Warn("ユーザー辞書への登録に失敗したのだ", "surface", entry.Surface, "error", err)
		}
	}
	slog.Info("ユーザー辞書の登録が完了したのだ", "entries", dict.Len())
}

// Run は話者単位の直列合成を実行し、各フレーズの実測の長さを書き込むのだ。
//
// 外側のループは話者（Pool の登録順＝宣言順）、内側は OriginalIndex 順。
// 既存の空でない音声ファイルは再合成せず、長さだけ実測して再利用します。
// 合成失敗はステージ単位のエラーとして即座に返し、それまでに書き出した
// ファイルはそのまま残すのだ。
func (vr *VoiceRunner) Run(ctx context.Context, phrases []domain.Phrase) error {
	if err := os.MkdirAll(vr.audioDir, 0o755); err != nil {
		return fmt.Errorf("音声ディレクトリの作成に失敗したのだ: %w", err)
	}

	synthesized, reused := 0, 0
	for _, personaID := range vr.pool.IDs() {
		synth, _ := vr.pool.Get(personaID)

		for i := range phrases {
			p := &phrases[i]
			if vr.resolvePoolID(p.PersonaID) != personaID {
				continue
			}

			path := filepath.Join(vr.audioDir, asset.AudioFileName(p.OriginalIndex))
			if asset.Reusable(path) {
				duration, err := voice.WAVFileDuration(path)
				if err != nil {
					return &domain.AssetMissingError{
						Kind: "audio", Path: path, Index: p.OriginalIndex,
						Reason: fmt.Sprintf("既存ファイルの長さ計測に失敗: %v", err),
					}
				}
				p.Duration = duration
				reused++
				continue
			}

			result, err := synth.Synthesize(ctx, p.SynthesisText())
			if err != nil {
				return &domain.ExternalServiceError{
					Stage: "voice-synthesis",
					Err:   fmt.Errorf("フレーズ %d の合成に失敗したのだ (persona=%s): %w", p.OriginalIndex, personaID, err),
				}
			}
			if err := os.WriteFile(path, result.Data, 0o644); err != nil {
				return fmt.Errorf("音声ファイルの書き出しに失敗したのだ (%s): %w", path, err)
			}
			p.Duration = result.Duration
			synthesized++
		}
	}

	slog.Info("音声合成が完了したのだ", "synthesized", synthesized, "reused", reused, "total", len(phrases))
	return nil
}

// resolvePoolID はフレーズの話者IDを Pool 上の担当IDへ解決するのだ。
// 未設定・未知のIDは先頭宣言の話者（デフォルト話者）が引き受けます。
func (vr *VoiceRunner) resolvePoolID(personaID string) string {
	ids := vr.pool.IDs()
	if personaID != "" {
		if _, ok := vr.pool.Get(personaID); ok {
			return personaID
		}
	}
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
