package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditStudent(t *testing.T) {
	scores := []Student{
		{ID: "s1", Name: "Ada", QuestionsAnswered: 3},
		{ID: "s2", Name: "Bo", QuestionsAnswered: 0},
	}
	tests := []struct {
		name   string
		asker  string
		delta  int
		scores []Student
		want   Mutation
	}{
		{
			name:   "absent name creates with delta",
			asker:  "Cy",
			delta:  1,
			scores: scores,
			want:   Mutation{Kind: MutationCreate, Name: "Cy", QuestionsAnswered: 1},
		},
		{
			name:   "absent name bulk delta",
			asker:  "Cy",
			delta:  4,
			scores: scores,
			want:   Mutation{Kind: MutationCreate, Name: "Cy", QuestionsAnswered: 4},
		},
		{
			name:   "empty snapshot",
			asker:  "Ada",
			delta:  2,
			scores: nil,
			want:   Mutation{Kind: MutationCreate, Name: "Ada", QuestionsAnswered: 2},
		},
		{
			name:   "present name increments",
			asker:  "Ada",
			delta:  1,
			scores: scores,
			want:   Mutation{Kind: MutationUpdate, StudentID: "s1", Name: "Ada", QuestionsAnswered: 4},
		},
		{
			name:   "present with zero",
			asker:  "Bo",
			delta:  2,
			scores: scores,
			want:   Mutation{Kind: MutationUpdate, StudentID: "s2", Name: "Bo", QuestionsAnswered: 2},
		},
		{
			name:   "match is case sensitive",
			asker:  "ada",
			delta:  1,
			scores: scores,
			want:   Mutation{Kind: MutationCreate, Name: "ada", QuestionsAnswered: 1},
		},
		{
			name:  "duplicate rows use the first",
			asker: "Ada",
			delta: 1,
			scores: []Student{
				{ID: "a", Name: "Ada", QuestionsAnswered: 1},
				{ID: "b", Name: "Ada", QuestionsAnswered: 7},
			},
			want: Mutation{Kind: MutationUpdate, StudentID: "a", Name: "Ada", QuestionsAnswered: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, creditStudent(tt.asker, tt.delta, tt.scores))
		})
	}
}

func TestTallyAskers(t *testing.T) {
	qs := []Question{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "A"}}
	assert.Equal(t, []askerTally{{Name: "A", Count: 2}, {Name: "B", Count: 1}}, tallyAskers(qs))
	assert.Empty(t, tallyAskers(nil))
}

func TestQuestionIDsKeepsOrder(t *testing.T) {
	qs := []Question{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	assert.Equal(t, []string{"x", "y", "z"}, questionIDs(qs))
}

func TestScoreFor(t *testing.T) {
	scores := []Student{{Name: "Ada", QuestionsAnswered: 5}}

	n, ok := scoreFor("Ada", scores)
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = scoreFor("Bo", scores)
	assert.False(t, ok)
}
