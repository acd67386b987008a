package store

// MemoryPersistence keeps both collections in process memory. It backs tests
// and ephemeral deployments where durability is not needed.
type MemoryPersistence struct {
	evaluations []Evaluation
	submissions []Submission
}

// NewMemoryPersistence returns an empty in-memory port.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) LoadEvaluations() ([]Evaluation, error) {
	out := make([]Evaluation, len(m.evaluations))
	copy(out, m.evaluations)
	return out, nil
}

func (m *MemoryPersistence) SaveEvaluations(evals []Evaluation) error {
	m.evaluations = append([]Evaluation(nil), evals...)
	return nil
}

func (m *MemoryPersistence) LoadSubmissions() ([]Submission, error) {
	out := make([]Submission, len(m.submissions))
	copy(out, m.submissions)
	return out, nil
}

func (m *MemoryPersistence) SaveSubmissions(subs []Submission) error {
	m.submissions = append([]Submission(nil), subs...)
	return nil
}

func (m *MemoryPersistence) Wipe() error {
	m.evaluations = nil
	m.submissions = nil
	return nil
}

var _ Persistence = (*MemoryPersistence)(nil)
