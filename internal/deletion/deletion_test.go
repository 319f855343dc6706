package deletion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/modes"
)

type fakeStore struct {
	records   []*history.Record
	deleted   []string
	lastScope modes.FilterMode
	failOn    string
}

func (s *fakeStore) List(_ context.Context, filter modes.FilterMode, _ history.Context, _ history.QueryOptions) ([]*history.Record, error) {
	s.lastScope = filter
	return s.records, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if id == s.failOn {
		return errors.New("record " + id + " not found")
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: []*history.Record{
		{ID: "1", Command: "export TOKEN=abc"},
		{ID: "2", Command: "git push"},
		{ID: "3", Command: "export TOKEN=def"},
		{ID: "4", Command: "echo export TOKEN=x"},
	}}
}

func TestExecute_Pattern(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	result, err := svc.Execute(context.Background(), Request{Pattern: "export TOKEN=*", Filter: modes.FilterSession})
	require.NoError(t, err)

	assert.Equal(t, 2, result.DeletedCount)
	assert.Equal(t, []string{"1", "3"}, store.deleted)
	assert.Equal(t, modes.FilterSession, store.lastScope)
}

func TestExecute_DryRun(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	result, err := svc.Execute(context.Background(), Request{Pattern: "git pus?", DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.MatchedRecords, 1)
	assert.Equal(t, "2", result.MatchedRecords[0].ID)
	assert.Zero(t, result.DeletedCount)
	assert.Empty(t, store.deleted)
}

func TestExecute_IDs(t *testing.T) {
	store := newFakeStore()
	store.failOn = "9"
	svc := NewService(store)

	result, err := svc.Execute(context.Background(), Request{IDs: []string{"2", "9", "3"}})
	assert.ErrorContains(t, err, "deletion failed after 1 records")
	assert.Equal(t, 1, result.DeletedCount)
	assert.Equal(t, []string{"2"}, store.deleted)
}

func TestExecute_RejectsBroadPattern(t *testing.T) {
	store := newFakeStore()
	_, err := NewService(store).Execute(context.Background(), Request{Pattern: "*"})
	assert.ErrorContains(t, err, "too broad")
	assert.Empty(t, store.deleted)
}

func TestValidatePattern(t *testing.T) {
	assert.Error(t, ValidatePattern(""))
	assert.Error(t, ValidatePattern("  "))
	assert.Error(t, ValidatePattern("**"))
	assert.Error(t, ValidatePattern("?*"))
	assert.ErrorContains(t, ValidatePattern("a*"), "too vague")
	assert.NoError(t, ValidatePattern("ls*"))
}

func TestPatternToRegexp(t *testing.T) {
	re, err := PatternToRegexp("rm -rf ./build*")
	require.NoError(t, err)

	assert.True(t, re.MatchString("rm -rf ./build"))
	assert.True(t, re.MatchString("rm -rf ./build/out"))
	assert.False(t, re.MatchString("sudo rm -rf ./build"))
	assert.False(t, re.MatchString("rm -rf xbuild"))

	re, err = PatternToRegexp("cat <<EOF*")
	require.NoError(t, err)
	assert.True(t, re.MatchString("cat <<EOF\nhello\nEOF"))
}
