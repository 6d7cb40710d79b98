package source

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeDataset(t *testing.T, dir, companyID, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, companyID+".json"), []byte(body), 0o644))
}

func TestFileSourceReadsCompanyFile(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "npa", `[{"id": 7, "name": "Police canteen", "lat": "", "lng": ""}]`)
	src := NewFileSource(dir, zaptest.NewLogger(t))

	stores, err := src.FetchStores(context.Background(), "npa")

	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.True(t, stores[0].IsChannel())
}

func TestFileSourceMissingCompany(t *testing.T) {
	src := NewFileSource(t.TempDir(), nil)

	_, err := src.FetchStores(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestFileSourceRejectsPathTraversal(t *testing.T) {
	src := NewFileSource(t.TempDir(), nil)

	for _, id := range []string{"../etc/passwd", "a/b", "..", ""} {
		_, err := src.FetchStores(context.Background(), id)
		assert.Error(t, err, id)
	}
}

func TestFileSourceErrorPayloadFile(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "broken", `{"error": "dataset withdrawn"}`)
	src := NewFileSource(dir, nil)

	_, err := src.FetchStores(context.Background(), "broken")
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
}

func TestFileSourceCompanies(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "moda", `[]`)
	writeDataset(t, dir, "npa", `[]`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644))

	ids, err := NewFileSource(dir, nil).Companies(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"moda", "npa"}, ids)
}

func TestFileSourceCachesUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "moda", `[{"id": 1, "name": "Old"}]`)
	src := NewFileSource(dir, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, src.Watch(ctx, ready))
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()
	<-ready

	stores, err := src.FetchStores(context.Background(), "moda")
	require.NoError(t, err)
	assert.Equal(t, "Old", stores[0].Name)

	writeDataset(t, dir, "moda", `[{"id": 1, "name": "New"}]`)

	require.Eventually(t, func() bool {
		stores, err := src.FetchStores(context.Background(), "moda")
		return err == nil && len(stores) == 1 && stores[0].Name == "New"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileSourceReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "moda", `[{"id": 1, "name": "Cafe"}]`)
	src := NewFileSource(dir, nil)

	first, err := src.FetchStores(context.Background(), "moda")
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := src.FetchStores(context.Background(), "moda")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", second[0].Name)
}

func TestFileSourceDropsReadRacingInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "moda", `[{"id": 1, "name": "Old"}]`)
	src := NewFileSource(dir, zaptest.NewLogger(t))

	var once sync.Once
	src.afterRead = func(companyID string) {
		once.Do(func() {
			writeDataset(t, dir, companyID, `[{"id": 1, "name": "New"}]`)
			src.Invalidate(companyID)
		})
	}

	first, err := src.FetchStores(context.Background(), "moda")
	require.NoError(t, err)
	assert.Equal(t, "Old", first[0].Name)

	second, err := src.FetchStores(context.Background(), "moda")
	require.NoError(t, err)
	assert.Equal(t, "New", second[0].Name)
}
