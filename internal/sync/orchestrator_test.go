package sync

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
)

// fakeLocalLibrary is an in-memory LocalLibrary.
type fakeLocalLibrary struct {
	mu         stdsync.Mutex
	nextID     int
	composers  map[string]*library.Composer
	works      map[string][]library.Work
	recordings map[string][]library.Recording
}

func newFakeLocalLibrary() *fakeLocalLibrary {
	return &fakeLocalLibrary{
		composers:  make(map[string]*library.Composer),
		works:      make(map[string][]library.Work),
		recordings: make(map[string][]library.Recording),
	}
}

func (f *fakeLocalLibrary) mintID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("local-%s-%d", prefix, f.nextID)
}

func (f *fakeLocalLibrary) GetComposerWithChildren(id string) (*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.composers[id]
	if !ok {
		return nil, fmt.Errorf("composer %s not found", id)
	}
	copied := *c
	copied.Works = append([]library.Work(nil), f.works[id]...)
	copied.Recordings = append([]library.Recording(nil), f.recordings[id]...)
	return &copied, nil
}

func (f *fakeLocalLibrary) CreateComposer(fields *library.ComposerFields) (*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := &library.Composer{
		ID:     f.mintID("composer"),
		Name:   fields.Name,
		Period: fields.Period,
		Image:  fields.Image,
	}
	f.composers[c.ID] = c
	return c, nil
}

func (f *fakeLocalLibrary) CreateWork(fields *library.WorkFields) (*library.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := library.Work{
		ID:         f.mintID("work"),
		ComposerID: fields.ComposerID,
		Title:      fields.Title,
		Edition:    fields.Edition,
		Year:       fields.Year,
		File:       fields.File,
	}
	f.works[fields.ComposerID] = append(f.works[fields.ComposerID], w)
	return &w, nil
}

func (f *fakeLocalLibrary) CreateRecording(fields *library.RecordingFields) (*library.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := library.Recording{
		ID:         f.mintID("recording"),
		ComposerID: fields.ComposerID,
		Title:      fields.Title,
		Performer:  fields.Performer,
		Duration:   fields.Duration,
		Year:       fields.Year,
		File:       fields.File,
	}
	f.recordings[fields.ComposerID] = append(f.recordings[fields.ComposerID], r)
	return &r, nil
}

// fakeRemoteLibrary is an in-memory RemoteLibrary.
type fakeRemoteLibrary struct {
	mu         stdsync.Mutex
	nextID     int
	composers  map[string]*library.Composer
	works      map[string][]library.Work
	recordings map[string][]library.Recording

	failCreateComposer bool
	failWorkTitles     map[string]bool
}

func newFakeRemoteLibrary() *fakeRemoteLibrary {
	return &fakeRemoteLibrary{
		composers:  make(map[string]*library.Composer),
		works:      make(map[string][]library.Work),
		recordings: make(map[string][]library.Recording),
	}
}

func (f *fakeRemoteLibrary) mintID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("remote-%s-%d", prefix, f.nextID)
}

func (f *fakeRemoteLibrary) ListComposers(ctx context.Context) ([]*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*library.Composer
	for _, c := range f.composers {
		copied := *c
		all = append(all, &copied)
	}
	return all, nil
}

func (f *fakeRemoteLibrary) GetComposer(ctx context.Context, id string) (*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.composers[id]
	if !ok {
		return nil, fmt.Errorf("composer %s not found", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeRemoteLibrary) GetComposerWithChildren(ctx context.Context, id string) (*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.composers[id]
	if !ok {
		return nil, fmt.Errorf("composer %s not found", id)
	}
	copied := *c
	copied.Works = append([]library.Work(nil), f.works[id]...)
	copied.Recordings = append([]library.Recording(nil), f.recordings[id]...)
	return &copied, nil
}

func (f *fakeRemoteLibrary) CreateComposer(ctx context.Context, fields *library.ComposerFields) (*library.Composer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreateComposer {
		return nil, fmt.Errorf("simulated composer insert failure")
	}

	c := &library.Composer{
		ID:              f.mintID("composer"),
		Name:            fields.Name,
		Period:          fields.Period,
		Image:           fields.Image,
		SheetMusicCount: fields.SheetMusicCount,
		RecordingCount:  fields.RecordingCount,
	}
	f.composers[c.ID] = c
	return c, nil
}

func (f *fakeRemoteLibrary) CreateWork(ctx context.Context, fields *library.WorkFields) (*library.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWorkTitles[fields.Title] {
		return nil, fmt.Errorf("simulated work insert failure")
	}

	w := library.Work{
		ID:         f.mintID("work"),
		ComposerID: fields.ComposerID,
		Title:      fields.Title,
		Edition:    fields.Edition,
		Year:       fields.Year,
		File:       fields.File,
	}
	f.works[fields.ComposerID] = append(f.works[fields.ComposerID], w)
	return &w, nil
}

func (f *fakeRemoteLibrary) CreateRecording(ctx context.Context, fields *library.RecordingFields) (*library.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := library.Recording{
		ID:         f.mintID("recording"),
		ComposerID: fields.ComposerID,
		Title:      fields.Title,
		Performer:  fields.Performer,
		Duration:   fields.Duration,
		Year:       fields.Year,
		File:       fields.File,
	}
	f.recordings[fields.ComposerID] = append(f.recordings[fields.ComposerID], r)
	return &r, nil
}

// fakeLocalAssets stores base64 payloads by path.
type fakeLocalAssets struct {
	mu    stdsync.Mutex
	files map[string]string
}

func newFakeLocalAssets() *fakeLocalAssets {
	return &fakeLocalAssets{files: make(map[string]string)}
}

func (f *fakeLocalAssets) put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = base64.StdEncoding.EncodeToString(data)
}

func (f *fakeLocalAssets) ReadBase64(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	encoded, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("asset %s not found", path)
	}
	return encoded, nil
}

func (f *fakeLocalAssets) WriteBase64(encoded string, category assets.Category, assetID, ext string) (string, error) {
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p := path.Join("local", string(category), assetID+ext)
	f.files[p] = encoded
	return p, nil
}

// fakeRemoteAssets records uploads and serves as URL space for fakeFetcher.
type fakeRemoteAssets struct {
	mu           stdsync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	failUploads  bool
}

func newFakeRemoteAssets() *fakeRemoteAssets {
	return &fakeRemoteAssets{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeRemoteAssets) Upload(ctx context.Context, data []byte, contentType string, category assets.Category, assetID, ext string) (string, error) {
	if f.failUploads {
		return "", fmt.Errorf("simulated upload failure")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	url := "https://bucket.test/" + path.Join(string(category), assetID+ext)
	f.objects[url] = append([]byte(nil), data...)
	f.contentTypes[url] = contentType
	return url, nil
}

// fakeFetcher reads back what fakeRemoteAssets stored.
type fakeFetcher struct {
	remote *fakeRemoteAssets
}

func (f *fakeFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.remote.mu.Lock()
	defer f.remote.mu.Unlock()

	data, ok := f.remote.objects[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: not found", url)
	}
	return append([]byte(nil), data...), nil
}

type fixture struct {
	local        *fakeLocalLibrary
	remote       *fakeRemoteLibrary
	localAssets  *fakeLocalAssets
	remoteAssets *fakeRemoteAssets
	orch         *Orchestrator
}

func newFixture() *fixture {
	local := newFakeLocalLibrary()
	remote := newFakeRemoteLibrary()
	localAssets := newFakeLocalAssets()
	remoteAssets := newFakeRemoteAssets()

	orch := New(&Config{
		Local:        local,
		Remote:       remote,
		LocalAssets:  localAssets,
		RemoteAssets: remoteAssets,
		Fetcher:      &fakeFetcher{remote: remoteAssets},
		Logger:       zap.NewNop(),
	})

	return &fixture{
		local:        local,
		remote:       remote,
		localAssets:  localAssets,
		remoteAssets: remoteAssets,
		orch:         orch,
	}
}

// seedComposer puts a fully hydrated composer with assets into the fixture's
// local side.
func (fx *fixture) seedComposer(name string, workCount, recordingCount int) *library.Composer {
	c := &library.Composer{
		ID:     "src-" + name,
		Name:   name,
		Period: "Baroque",
		Image:  library.LocalRef("local/avatars/" + name + ".png"),
	}
	fx.localAssets.put(c.Image.Value, []byte("portrait of "+name))

	for i := 0; i < workCount; i++ {
		filePath := fmt.Sprintf("local/sheets/%s-work-%d.pdf", name, i)
		fx.localAssets.put(filePath, []byte(fmt.Sprintf("score %s %d", name, i)))
		c.Works = append(c.Works, library.Work{
			ID:         fmt.Sprintf("src-%s-work-%d", name, i),
			ComposerID: c.ID,
			Title:      fmt.Sprintf("Partita %d", i+1),
			Edition:    "Urtext",
			Year:       1720 + i,
			File:       library.LocalRef(filePath),
		})
	}

	for i := 0; i < recordingCount; i++ {
		filePath := fmt.Sprintf("local/recordings/%s-rec-%d.mp3", name, i)
		fx.localAssets.put(filePath, []byte(fmt.Sprintf("audio %s %d", name, i)))
		c.Recordings = append(c.Recordings, library.Recording{
			ID:         fmt.Sprintf("src-%s-rec-%d", name, i),
			ComposerID: c.ID,
			Title:      fmt.Sprintf("Suite %d", i+1),
			Performer:  "Mainz Chamber Orchestra",
			Duration:   "12:30",
			Year:       1960 + i,
			File:       library.LocalRef(filePath),
		})
	}

	return c
}

func collectProgress() (*[]int, ProgressFunc) {
	var calls []int
	return &calls, func(percent int) {
		calls = append(calls, percent)
	}
}

func assertProgressSequence(t *testing.T, calls []int, wantSteps int) {
	t.Helper()

	require.Len(t, calls, wantSteps)
	prev := -1
	for _, p := range calls {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		assert.Greater(t, p, prev, "progress must be strictly increasing")
		prev = p
	}
	assert.Equal(t, 100, calls[len(calls)-1])
}

func TestPushProgressSequence(t *testing.T) {
	fx := newFixture()
	composer := fx.seedComposer("bach", 3, 2)

	calls, onProgress := collectProgress()

	report, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	assertProgressSequence(t, *calls, 1+3+2)
	assert.Empty(t, report.Failures())
}

func TestPushNoChildrenSingleCallback(t *testing.T) {
	fx := newFixture()
	composer := &library.Composer{ID: "src-solo", Name: "Satie"}

	calls, onProgress := collectProgress()

	_, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	require.Equal(t, []int{100}, *calls)
}

func TestPushNilProgressCallback(t *testing.T) {
	fx := newFixture()
	composer := fx.seedComposer("telemann", 1, 1)

	_, err := fx.orch.PushComposer(context.Background(), composer, nil)
	require.NoError(t, err)
}

func TestPushCreatesRemoteSubtree(t *testing.T) {
	fx := newFixture()
	composer := fx.seedComposer("bach", 2, 1)

	_, err := fx.orch.PushComposer(context.Background(), composer, nil)
	require.NoError(t, err)

	require.Len(t, fx.remote.composers, 1)
	for id, c := range fx.remote.composers {
		assert.Equal(t, "bach", c.Name)
		assert.Equal(t, 2, c.SheetMusicCount)
		assert.Equal(t, 1, c.RecordingCount)
		assert.NotEqual(t, composer.ID, id, "remote id must be freshly minted")
		assert.Equal(t, library.AssetRemote, c.Image.Kind)

		require.Len(t, fx.remote.works[id], 2)
		for i, w := range fx.remote.works[id] {
			assert.Equal(t, composer.Works[i].Title, w.Title)
			assert.Equal(t, composer.Works[i].Edition, w.Edition)
			assert.Equal(t, composer.Works[i].Year, w.Year)
			assert.Equal(t, id, w.ComposerID, "work must reference the new remote composer")
			assert.Equal(t, library.AssetRemote, w.File.Kind)
			assert.NotEqual(t, composer.Works[i].File.Value, w.File.Value)
		}

		require.Len(t, fx.remote.recordings[id], 1)
	}
}

func TestPushMissingAssetTolerated(t *testing.T) {
	fx := newFixture()
	composer := fx.seedComposer("handel", 2, 0)

	// Simulate an out-of-band deletion of the first work's file
	delete(fx.localAssets.files, composer.Works[0].File.Value)

	calls, onProgress := collectProgress()

	report, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	// Progress still completes every step
	assertProgressSequence(t, *calls, 3)

	// Both works exist remotely; the one with the missing asset has no file
	for id := range fx.remote.composers {
		works := fx.remote.works[id]
		require.Len(t, works, 2)
		assert.True(t, works[0].File.IsEmpty())
		assert.False(t, works[1].File.IsEmpty())
	}

	// The failure is visible in the step log as a failed asset step
	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, StepAsset, failures[0].Kind)
	assert.Equal(t, composer.Works[0].ID, failures[0].EntityID)
}

func TestPushUploadContentTypes(t *testing.T) {
	fx := newFixture()

	composer := &library.Composer{
		ID:    "src-ct",
		Name:  "Rameau",
		Image: library.LocalRef("local/avatars/rameau.png"),
		Works: []library.Work{{
			ID:    "src-ct-work",
			Title: "Unknown format",
			File:  library.LocalRef("local/sheets/mystery.xyz"),
		}},
	}
	fx.localAssets.put("local/avatars/rameau.png", []byte("png bytes"))
	fx.localAssets.put("local/sheets/mystery.xyz", []byte("mystery bytes"))

	_, err := fx.orch.PushComposer(context.Background(), composer, nil)
	require.NoError(t, err)

	types := make(map[string]bool)
	for _, ct := range fx.remoteAssets.contentTypes {
		types[ct] = true
	}
	assert.True(t, types["image/png"], "png asset must upload as image/png")
	assert.True(t, types["application/octet-stream"], "unknown extension must upload as octet-stream")
}

func TestPushComposerInsertFailureSkipsChildren(t *testing.T) {
	fx := newFixture()
	fx.remote.failCreateComposer = true
	composer := fx.seedComposer("bach", 2, 1)

	calls, onProgress := collectProgress()

	report, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	// Progress semantics hold even when nothing could be inserted
	assertProgressSequence(t, *calls, 4)

	assert.Empty(t, fx.remote.works)
	assert.Empty(t, fx.remote.recordings)
	assert.Len(t, report.Skipped(), 3)
}

func TestPushIsolatedInsertFailure(t *testing.T) {
	fx := newFixture()
	fx.remote.failWorkTitles = map[string]bool{"Partita 2": true}
	composer := fx.seedComposer("bach", 3, 0)

	calls, onProgress := collectProgress()

	report, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	assertProgressSequence(t, *calls, 4)

	for id := range fx.remote.composers {
		require.Len(t, fx.remote.works[id], 2, "the two good works still transfer")
	}

	var failedKinds []StepKind
	for _, s := range report.Failures() {
		failedKinds = append(failedKinds, s.Kind)
	}
	assert.Contains(t, failedKinds, StepWork)
}

func TestPullNoChildrenSingleCallback(t *testing.T) {
	fx := newFixture()

	created, err := fx.remote.CreateComposer(context.Background(), &library.ComposerFields{Name: "Satie"})
	require.NoError(t, err)

	calls, onProgress := collectProgress()

	_, err = fx.orch.PullComposer(context.Background(), created.ID, onProgress)
	require.NoError(t, err)

	require.Equal(t, []int{100}, *calls)
}

func TestPullFatalFetchReportsNoProgress(t *testing.T) {
	fx := newFixture()

	calls, onProgress := collectProgress()

	_, err := fx.orch.PullComposer(context.Background(), "no-such-composer", onProgress)
	require.Error(t, err)
	assert.Empty(t, *calls)
}

func TestPullAppendsCopySuffix(t *testing.T) {
	fx := newFixture()

	created, err := fx.remote.CreateComposer(context.Background(), &library.ComposerFields{Name: "Couperin"})
	require.NoError(t, err)

	_, err = fx.orch.PullComposer(context.Background(), created.ID, nil)
	require.NoError(t, err)

	require.Len(t, fx.local.composers, 1)
	for _, c := range fx.local.composers {
		assert.Equal(t, "Couperin"+CopySuffix, c.Name)
	}
}

func TestRoundTripPushThenPull(t *testing.T) {
	fx := newFixture()
	composer := fx.seedComposer("bach", 2, 2)

	_, err := fx.orch.PushComposer(context.Background(), composer, nil)
	require.NoError(t, err)

	var remoteID string
	for id := range fx.remote.composers {
		remoteID = id
	}
	require.NotEmpty(t, remoteID)

	report, err := fx.orch.PullComposer(context.Background(), remoteID, nil)
	require.NoError(t, err)
	require.Empty(t, report.Failures())

	require.Len(t, fx.local.composers, 1)
	for id, c := range fx.local.composers {
		assert.Equal(t, composer.Name+CopySuffix, c.Name)
		assert.Equal(t, composer.Period, c.Period)
		assert.NotEqual(t, composer.ID, id)

		works := fx.local.works[id]
		require.Len(t, works, 2)
		for i, w := range works {
			assert.Equal(t, composer.Works[i].Title, w.Title)
			assert.Equal(t, composer.Works[i].Edition, w.Edition)
			assert.Equal(t, composer.Works[i].Year, w.Year)
			assert.Equal(t, library.AssetLocal, w.File.Kind)

			// Asset content survives the double re-encoding
			encoded, err := fx.localAssets.ReadBase64(w.File.Value)
			require.NoError(t, err)
			got, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			want, err := fx.localAssets.ReadBase64(composer.Works[i].File.Value)
			require.NoError(t, err)
			wantBytes, err := base64.StdEncoding.DecodeString(want)
			require.NoError(t, err)
			assert.Equal(t, wantBytes, got)
		}

		recordings := fx.local.recordings[id]
		require.Len(t, recordings, 2)
		for i, r := range recordings {
			assert.Equal(t, composer.Recordings[i].Title, r.Title)
			assert.Equal(t, composer.Recordings[i].Performer, r.Performer)
			assert.Equal(t, composer.Recordings[i].Duration, r.Duration)
			assert.Equal(t, composer.Recordings[i].Year, r.Year)
		}
	}
}

func TestConcurrentPushesDoNotInterfere(t *testing.T) {
	fx := newFixture()
	bach := fx.seedComposer("bach", 3, 1)
	handel := fx.seedComposer("handel", 1, 4)

	var wg stdsync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = fx.orch.PushComposer(context.Background(), bach, nil)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = fx.orch.PushComposer(context.Background(), handel, nil)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	require.Len(t, fx.remote.composers, 2)
	for id, c := range fx.remote.composers {
		switch c.Name {
		case "bach":
			assert.Len(t, fx.remote.works[id], 3)
			assert.Len(t, fx.remote.recordings[id], 1)
		case "handel":
			assert.Len(t, fx.remote.works[id], 1)
			assert.Len(t, fx.remote.recordings[id], 4)
		default:
			t.Fatalf("unexpected composer %q", c.Name)
		}
	}
}

func TestPushAvatarFailureLeavesImageEmpty(t *testing.T) {
	fx := newFixture()
	fx.remoteAssets.failUploads = true
	composer := fx.seedComposer("vivaldi", 0, 0)

	calls, onProgress := collectProgress()

	report, err := fx.orch.PushComposer(context.Background(), composer, onProgress)
	require.NoError(t, err)

	require.Equal(t, []int{100}, *calls)

	for _, c := range fx.remote.composers {
		assert.True(t, c.Image.IsEmpty())
	}
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, StepAsset, report.Failures()[0].Kind)
}
