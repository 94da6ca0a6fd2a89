package voice

// Pool は「話者IDごとの利用可能な合成器」を束ねる明示的なリソースオブジェクトです。
//
// グローバル変数にはせず、オーケストレーションを担うランナーが所有して
// 各呼び出し先へ引数で渡すのだ。合成は話者単位で直列に進むため、
// 各合成器は同時にひとつの所有者からしか使われない。
type Pool struct {
	order []string
	byID  map[string]Synthesizer
}

// NewPool は空の Pool を生成するのだ。
func NewPool() *Pool {
	return &Pool{byID: make(map[string]Synthesizer)}
}

// Register は話者IDと合成器を対応付けます。同じIDへの再登録は上書きです。
func (p *Pool) Register(personaID string, s Synthesizer) {
	if _, exists := p.byID[personaID]; !exists {
		p.order = append(p.order, personaID)
	}
	p.byID[personaID] = s
}

// Get は話者IDに対応する合成器を返します。
func (p *Pool) Get(personaID string) (Synthesizer, bool) {
	s, ok := p.byID[personaID]
	return s, ok
}

// IDs は登録順の話者ID一覧を返すのだ。話者単位の直列合成はこの順で回る。
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.order))
	copy(ids, p.order)
	return ids
}

// Len は登録済みの話者数を返します。
func (p *Pool) Len() int {
	return len(p.byID)
}
