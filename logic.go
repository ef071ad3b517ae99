package main

type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
)

// Mutation is a single write against the students table.
type Mutation struct {
	Kind              MutationKind
	StudentID         string // set for updates
	Name              string
	QuestionsAnswered int // value to write, not a delta
}

// creditStudent decides how to add delta points to name given the current
// score snapshot. Names match case-sensitively; when several rows share the
// name the first one in the snapshot wins. The decision is not atomic with
// respect to other writers.
func creditStudent(name string, delta int, scores []Student) Mutation {
	for _, s := range scores {
		if s.Name == name {
			return Mutation{
				Kind:              MutationUpdate,
				StudentID:         s.ID,
				Name:              name,
				QuestionsAnswered: s.QuestionsAnswered + delta,
			}
		}
	}
	return Mutation{Kind: MutationCreate, Name: name, QuestionsAnswered: delta}
}

type askerTally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// tallyAskers counts open questions per asker, in order of first appearance.
func tallyAskers(qs []Question) []askerTally {
	index := map[string]int{}
	var out []askerTally
	for _, q := range qs {
		if i, ok := index[q.Name]; ok {
			out[i].Count++
			continue
		}
		index[q.Name] = len(out)
		out = append(out, askerTally{Name: q.Name, Count: 1})
	}
	return out
}

func questionIDs(qs []Question) []string {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

// scoreFor returns the tally shown next to an asker's name, if any.
func scoreFor(name string, scores []Student) (int, bool) {
	for _, s := range scores {
		if s.Name == name {
			return s.QuestionsAnswered, true
		}
	}
	return 0, false
}
