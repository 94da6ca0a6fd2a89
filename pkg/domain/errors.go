package domain

import "fmt"

// InputValidationError は台本・話者設定・シーン範囲などの構造的な入力不備を表します。
// ローカルで検出され、即座に実行を打ち切る致命的エラーです。
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("入力が不正なのだ (%s): %s", e.Field, e.Reason)
}

// PronunciationError はクリーニング後も読みが検証を通らなかったことを表します。
// 該当エントリを破棄するだけで処理は続行する、非致命的なエラーです。
type PronunciationError struct {
	Surface string
	Reading string
}

func (e *PronunciationError) Error() string {
	return fmt.Sprintf("読みが不正なため辞書登録をスキップしたのだ (surface=%q, reading=%q)", e.Surface, e.Reading)
}

// UnknownPersonaError は設定にない話者IDをフレーズが参照していることを表します。
// 通常はログに残してデフォルト話者へフォールバックし、strict モードでのみ致命的です。
type UnknownPersonaError struct {
	PersonaID   string
	PhraseIndex int
}

func (e *UnknownPersonaError) Error() string {
	return fmt.Sprintf("未設定の話者IDが参照されているのだ (persona=%q, phrase=%d)", e.PersonaID, e.PhraseIndex)
}

// AssetMissingError は合成済みのはずの素材が組み立て時に見つからない、
// または宣言と実体の長さが食い違っていることを表します。
type AssetMissingError struct {
	Kind   string // "audio" / "slide"
	Path   string
	Index  int
	Reason string
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("素材が利用できないのだ (kind=%s, index=%d, path=%s): %s", e.Kind, e.Index, e.Path, e.Reason)
}

// ExternalServiceError は LLM・TTS・画像生成などの外部呼び出しがリトライ上限まで
// 失敗したことを表します。失敗したステージだけを中断し、生成済みの成果物は保持します。
type ExternalServiceError struct {
	Stage string
	Err   error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("外部サービス呼び出しに失敗したのだ (stage=%s): %v", e.Stage, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
