package kana

import (
	"log/slog"

	"github.com/shouni/go-movie-kit/pkg/domain"
)

// TTS エンジンのユーザー辞書が受け付ける品詞タイプ。
const (
	WordClassProperNoun = "PROPER_NOUN"
	WordClassCommonNoun = "COMMON_NOUN"
	WordClassVerb       = "VERB"
	WordClassAdjective  = "ADJECTIVE"
	WordClassSuffix     = "SUFFIX"
)

// 登録経路ごとの優先度。手動 > LLM検証済み > 形態素解析の順で勝たせたいので、
// 必ずこの順に登録することが呼び出し側の契約なのだ。
const (
	PriorityManual   = 10
	PriorityVerified = 8
	PriorityAnalyzed = 5
)

// Entry は発音辞書の1エントリ（表層形とクリーニング済みカタカナ読み）です。
type Entry struct {
	Surface   string `json:"surface"`
	Reading   string `json:"reading"`
	Accent    int    `json:"accent"`
	WordClass string `json:"word_class"`
	Priority  int    `json:"priority"` // 1〜10
}

// Morpheme は形態素解析器が返す表層形と読みのペアです。
type Morpheme struct {
	Surface string
	Reading string
}

// Dictionary は表層形をキーとした発音辞書です。
//
// 同じ表層形への後からの登録は優先度にかかわらずスキップされます。先勝ちなので、
// 手動エントリとLLM検証済みエントリを一括の自動解析より先に登録しておくことで
// 優先順位が成立する仕組みなのだ。prepare フェーズの後は読み取り専用として扱います。
type Dictionary struct {
	entries map[string]Entry
	order   []string // 登録順。エンジンへの一括登録を決定的にするために保持する
}

// NewDictionary は空の発音辞書を生成するのだ。
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Entry)}
}

// AddEntry は読みをクリーニングしてから辞書に登録します。
// クリーニング後に検証を通らない読みは登録せず PronunciationError を返します。
// すでに同じ表層形が登録済みの場合は何もしません（先勝ち）。
func (d *Dictionary) AddEntry(surface, reading string, accent int, wordClass string, priority int) error {
	if priority < 1 || priority > 10 {
		return &domain.InputValidationError{Field: "priority", Reason: "優先度は1〜10で指定してほしいのだ"}
	}

	cleaned := Clean(reading)
	if !IsValid(cleaned) {
		return &domain.PronunciationError{Surface: surface, Reading: reading}
	}

	if _, exists := d.entries[surface]; exists {
		slog.Debug("表層形が登録済みのためスキップしたのだ", "surface", surface, "priority", priority)
		return nil
	}

	d.entries[surface] = Entry{
		Surface:   surface,
		Reading:   cleaned,
		Accent:    accent,
		WordClass: wordClass,
		Priority:  priority,
	}
	d.order = append(d.order, surface)
	return nil
}

// AddWord はアクセント・品詞を既定値（平板・固有名詞）で登録する簡易版なのだ。
func (d *Dictionary) AddWord(surface, reading string, priority int) error {
	return d.AddEntry(surface, reading, 0, WordClassProperNoun, priority)
}

// AddFromMorphemes は形態素解析の結果を一括登録し、登録できた件数を返します。
// 登録済みの表層形はスキップされ、不正な読みは破棄されます（どちらも非致命的）。
func (d *Dictionary) AddFromMorphemes(morphemes []Morpheme, priority int) int {
	if priority <= 0 {
		priority = PriorityAnalyzed
	}

	added := 0
	for _, m := range morphemes {
		if _, exists := d.entries[m.Surface]; exists {
			continue
		}
		if err := d.AddEntry(m.Surface, m.Reading, 0, WordClassCommonNoun, priority); err != nil {
			slog.Warn("形態素エントリを破棄したのだ", "surface", m.Surface, "error", err)
			continue
		}
		added++
	}
	return added
}

// Lookup は表層形に対応するエントリを返します。
func (d *Dictionary) Lookup(surface string) (Entry, bool) {
	e, ok := d.entries[surface]
	return e, ok
}

// Entries は登録順のエントリ一覧を返すのだ。エンジンへの一括登録に使います。
func (d *Dictionary) Entries() []Entry {
	result := make([]Entry, 0, len(d.order))
	for _, surface := range d.order {
		result = append(result, d.entries[surface])
	}
	return result
}

// Len は登録済みエントリ数を返します。
func (d *Dictionary) Len() int {
	return len(d.entries)
}
