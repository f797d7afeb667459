package matcher

// Mapping pairs a transaction memo with the account it was assigned.
type Mapping struct {
	Memo    string
	Account string
}

// Report collects memo -> account assignments. A memo recorded twice keeps
// its first position and its latest account.
type Report struct {
	mappings []Mapping
	pos      map[string]int
	hits     int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{pos: make(map[string]int)}
}

// Record stores the assignment of memo to account path.
func (r *Report) Record(memo, account string) {
	r.hits++
	if i, ok := r.pos[memo]; ok {
		r.mappings[i].Account = account
		return
	}
	r.pos[memo] = len(r.mappings)
	r.mappings = append(r.mappings, Mapping{Memo: memo, Account: account})
}

// Len returns the number of distinct memos.
func (r *Report) Len() int { return len(r.mappings) }

// Hits returns the number of Record calls.
func (r *Report) Hits() int { return r.hits }

// Lookup returns the account recorded for memo.
func (r *Report) Lookup(memo string) (string, bool) {
	i, ok := r.pos[memo]
	if !ok {
		return "", false
	}
	return r.mappings[i].Account, true
}

// Mappings returns a copy of the assignments in first-recorded order.
func (r *Report) Mappings() []Mapping {
	return append([]Mapping(nil), r.mappings...)
}
