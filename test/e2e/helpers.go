//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/api/handlers"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/repository"
	"github.com/studyhall-ai/studyhall/internal/server"
	"github.com/studyhall-ai/studyhall/internal/service"
	"github.com/studyhall-ai/studyhall/internal/storage"
	"github.com/studyhall-ai/studyhall/internal/testutil"
)

// embeddingDims must match the vector column width in the migrations.
const embeddingDims = 768

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	MediaDir     string
	Enqueued     *enqueueRecorder
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-media",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	mediaDir, err := os.MkdirTemp("", "studyhall-media-*")
	if err != nil {
		t.Fatalf("failed to create media dir: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	enqueued := &enqueueRecorder{}
	serverURL, serverCloser := startServer(t, pool, s3Client, mediaDir, enqueued, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		MediaDir:     mediaDir,
		Enqueued:     enqueued,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.MediaDir != "" {
		os.RemoveAll(e.MediaDir)
	}
}

// CreateModule inserts a module directly; module CRUD has no HTTP surface.
func (e *E2ETestEnv) CreateModule(courseID int64, title string, position int) int64 {
	m := &domain.Module{CourseID: courseID, Title: title, Position: position}
	if err := repository.NewModuleRepository(e.Pool).Create(e.Ctx, m); err != nil {
		e.T.Fatalf("failed to create module: %v", err)
	}
	return m.ID
}

// CreateLesson inserts a lesson directly, bypassing the video upload path.
func (e *E2ETestEnv) CreateLesson(moduleID int64, title string, difficulty domain.DifficultyLevel, position int) int64 {
	l := &domain.Lesson{
		ModuleID:   moduleID,
		Title:      title,
		Difficulty: difficulty,
		Position:   position,
	}
	if err := repository.NewLessonRepository(e.Pool).Create(e.Ctx, l); err != nil {
		e.T.Fatalf("failed to create lesson: %v", err)
	}
	return l.ID
}

// ChunkCount returns the number of stored chunks for a lesson.
func (e *E2ETestEnv) ChunkCount(lessonID int64) int {
	var n int
	err := e.Pool.QueryRow(e.Ctx, "SELECT COUNT(*) FROM lesson_chunks WHERE lesson_id = $1", lessonID).Scan(&n)
	if err != nil {
		e.T.Fatalf("failed to count chunks: %v", err)
	}
	return n
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// UploadVideo posts a multipart lesson video and returns the parsed response.
func (e *E2ETestEnv) UploadVideo(moduleID int64, title string, difficulty domain.DifficultyLevel, position int, filename string, content []byte) (*APIResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, err
	}
	mw.WriteField("title", title)
	mw.WriteField("difficulty", string(difficulty))
	mw.WriteField("position", fmt.Sprintf("%d", position))
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/modules/%d/lessons", e.ServerURL, moduleID)
	req, err := http.NewRequest("POST", url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// SHA256Sum calculates SHA256 hash of data
func SHA256Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// startServer wires the HTTP server with real repositories and a
// deterministic in-process embedder, so the retrieval path runs end to end
// without a live embedding provider.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, mediaDir string, enqueued *enqueueRecorder, port int) (string, func()) {
	lessonRepo := repository.NewLessonRepository(pool)
	moduleRepo := repository.NewModuleRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	embedder := &wordHashEmbedder{dims: embeddingDims}
	indexingSvc := service.NewIndexingService(embedder, txRunner, service.DefaultChunkConfig())
	searchSvc := service.NewSearchService(embedder, chunkRepo)
	adaptiveSvc := service.NewAdaptiveService(lessonRepo, moduleRepo)
	playlistSvc := service.NewPlaylistService(moduleRepo, &cannedTranscripts{}, indexingSvc, txRunner)
	lessonSvc := service.NewLessonService(lessonRepo, moduleRepo, s3Client, enqueued, mediaDir)

	cfg := server.RouterConfig{
		LessonHandler:       handlers.NewLessonHandler(lessonSvc),
		MaterialHandler:     handlers.NewMaterialHandler(indexingSvc),
		SearchHandler:       handlers.NewSearchHandler(searchSvc),
		LearningPathHandler: handlers.NewLearningPathHandler(adaptiveSvc),
		PlaylistHandler:     handlers.NewPlaylistHandler(playlistSvc),
	}

	router := server.NewRouter(cfg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// wordHashEmbedder maps text to a normalized bag-of-words vector. Texts
// sharing vocabulary land close in cosine distance, which is enough to
// exercise ranking without a live provider. Document and query modes share
// the coordinate space, as the real embedder guarantees.
type wordHashEmbedder struct {
	dims int
}

func (e *wordHashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func (e *wordHashEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *wordHashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *wordHashEmbedder) Dimensions() int { return e.dims }

// cannedTranscripts serves a fixed transcript for URLs containing
// "captioned" and reports every other video as having none.
type cannedTranscripts struct{}

const cannedTranscript = "Verbs describe actions. Every sentence needs a verb to express what the subject does."

func (c *cannedTranscripts) Fetch(ctx context.Context, videoURL string) (string, error) {
	if strings.Contains(videoURL, "captioned") {
		return cannedTranscript, nil
	}
	return "", domain.ErrTranscriptNotFound
}

// enqueueRecorder satisfies the pipeline enqueuer without running ffmpeg.
type enqueueRecorder struct {
	mu      sync.Mutex
	lessons []int64
	paths   []string
}

func (r *enqueueRecorder) Enqueue(lessonID int64, videoPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons = append(r.lessons, lessonID)
	r.paths = append(r.paths, videoPath)
}

func (r *enqueueRecorder) Lessons() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.lessons))
	copy(out, r.lessons)
	return out
}
