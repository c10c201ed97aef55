// Package sync copies complete composer subtrees between the local and the
// remote store. A push or pull is sequential and best-effort: each asset
// transfer and each record insert is its own unit of work, a single failure
// is logged and skipped, and the destination is mutated incrementally.
package sync

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/logging"
)

// CopySuffix is appended to a pulled composer's name. Pull never merges with
// an existing local composer of the same name.
const CopySuffix = " (copy)"

// ProgressFunc receives the overall completion percentage after every
// counted step. Values are in [0,100], non-decreasing, and reach 100 when
// the call returns without a fatal error.
type ProgressFunc func(percent int)

// LocalLibrary is the slice of the local relational store the orchestrator
// needs.
type LocalLibrary interface {
	GetComposerWithChildren(id string) (*library.Composer, error)
	CreateComposer(fields *library.ComposerFields) (*library.Composer, error)
	CreateWork(fields *library.WorkFields) (*library.Work, error)
	CreateRecording(fields *library.RecordingFields) (*library.Recording, error)
}

// RemoteLibrary is the slice of the remote relational store the orchestrator
// needs.
type RemoteLibrary interface {
	ListComposers(ctx context.Context) ([]*library.Composer, error)
	GetComposer(ctx context.Context, id string) (*library.Composer, error)
	GetComposerWithChildren(ctx context.Context, id string) (*library.Composer, error)
	CreateComposer(ctx context.Context, fields *library.ComposerFields) (*library.Composer, error)
	CreateWork(ctx context.Context, fields *library.WorkFields) (*library.Work, error)
	CreateRecording(ctx context.Context, fields *library.RecordingFields) (*library.Recording, error)
}

// LocalAssets reads and writes the local asset store in its base64 transport
// encoding.
type LocalAssets interface {
	ReadBase64(path string) (string, error)
	WriteBase64(encoded string, category assets.Category, assetID, ext string) (string, error)
}

// RemoteAssets uploads raw bytes to the remote object store and returns a
// durable URL.
type RemoteAssets interface {
	Upload(ctx context.Context, data []byte, contentType string, category assets.Category, assetID, ext string) (string, error)
}

// ByteFetcher downloads a remote asset URL into memory.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Config holds the orchestrator's collaborators. All store handles are
// explicit; the caller owns their lifecycle.
type Config struct {
	Local        LocalLibrary
	Remote       RemoteLibrary
	LocalAssets  LocalAssets
	RemoteAssets RemoteAssets
	Fetcher      ByteFetcher
	Logger       *zap.Logger
}

// Orchestrator implements push and pull between the two stores.
type Orchestrator struct {
	local        LocalLibrary
	remote       RemoteLibrary
	localAssets  LocalAssets
	remoteAssets RemoteAssets
	fetcher      ByteFetcher
	logger       *zap.Logger
}

// New creates an Orchestrator.
func New(cfg *Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}

	return &Orchestrator{
		local:        cfg.Local,
		remote:       cfg.Remote,
		localAssets:  cfg.LocalAssets,
		remoteAssets: cfg.RemoteAssets,
		fetcher:      cfg.Fetcher,
		logger:       logger,
	}
}

// ListRemoteComposers lists the composers available for pulling.
func (o *Orchestrator) ListRemoteComposers(ctx context.Context) ([]*library.Composer, error) {
	return o.remote.ListComposers(ctx)
}

// GetRemoteComposer retrieves one remote composer for browsing before a pull.
func (o *Orchestrator) GetRemoteComposer(ctx context.Context, id string) (*library.Composer, error) {
	return o.remote.GetComposer(ctx, id)
}

// PushComposer copies a fully hydrated local composer subtree to the remote
// store, minting new remote ids. Asset transfers and child inserts are
// best-effort; the returned report records every step's outcome.
func (o *Orchestrator) PushComposer(ctx context.Context, composer *library.Composer, onProgress ProgressFunc) (*Report, error) {
	if composer == nil {
		return nil, fmt.Errorf("composer cannot be nil")
	}

	report := &Report{}
	totalSteps := 1 + len(composer.Works) + len(composer.Recordings)
	currentStep := 0

	o.logger.Info("starting push",
		zap.String("composer_id", composer.ID),
		zap.String("name", composer.Name),
		zap.Int("works", len(composer.Works)),
		zap.Int("recordings", len(composer.Recordings)))

	// Avatar transfer is not a counted step. On failure the composer is
	// created with an empty image.
	var remoteImage library.AssetRef
	if !composer.Image.IsEmpty() {
		imageURL, size, err := o.transcodeToRemote(ctx, composer.Image.Value, assets.CategoryAvatar)
		if err != nil {
			o.logger.Warn("avatar transfer failed, pushing composer without image",
				zap.String("composer_id", composer.ID),
				zap.Error(err))
			report.add(StepAsset, composer.ID, OutcomeFailed, err)
		} else {
			remoteImage = library.RemoteRef(imageURL)
			report.BytesTransferred += size
			report.add(StepAsset, composer.ID, OutcomeOK, nil)
		}
	}

	// Composer insert is the first counted step. If it fails there is no
	// parent to attach children to, so the per-item steps below are
	// recorded as skipped; progress still ticks for every one of them.
	var remoteComposerID string
	created, err := o.remote.CreateComposer(ctx, &library.ComposerFields{
		Name:            composer.Name,
		Period:          composer.Period,
		Image:           remoteImage,
		SheetMusicCount: len(composer.Works),
		RecordingCount:  len(composer.Recordings),
	})
	if err != nil {
		o.logger.Error("remote composer insert failed",
			zap.String("composer_id", composer.ID),
			zap.Error(err))
		report.add(StepComposer, composer.ID, OutcomeFailed, err)
	} else {
		remoteComposerID = created.ID
		report.add(StepComposer, composer.ID, OutcomeOK, nil)
	}
	currentStep++
	reportProgress(onProgress, currentStep, totalSteps)

	for _, work := range composer.Works {
		if remoteComposerID == "" {
			report.add(StepWork, work.ID, OutcomeSkipped, nil)
			currentStep++
			reportProgress(onProgress, currentStep, totalSteps)
			continue
		}

		var remoteFile library.AssetRef
		if !work.File.IsEmpty() {
			fileURL, size, err := o.transcodeToRemote(ctx, work.File.Value, assets.CategorySheet)
			if err != nil {
				o.logger.Warn("work asset transfer failed, pushing work without file",
					zap.String("work_id", work.ID),
					zap.Error(err))
				report.add(StepAsset, work.ID, OutcomeFailed, err)
			} else {
				remoteFile = library.RemoteRef(fileURL)
				report.BytesTransferred += size
				report.add(StepAsset, work.ID, OutcomeOK, nil)
			}
		}

		_, err := o.remote.CreateWork(ctx, &library.WorkFields{
			ComposerID: remoteComposerID,
			Title:      work.Title,
			Edition:    work.Edition,
			Year:       work.Year,
			File:       remoteFile,
		})
		if err != nil {
			o.logger.Error("remote work insert failed",
				zap.String("work_id", work.ID),
				zap.Error(err))
			report.add(StepWork, work.ID, OutcomeFailed, err)
		} else {
			report.add(StepWork, work.ID, OutcomeOK, nil)
		}

		currentStep++
		reportProgress(onProgress, currentStep, totalSteps)
	}

	for _, recording := range composer.Recordings {
		if remoteComposerID == "" {
			report.add(StepRecording, recording.ID, OutcomeSkipped, nil)
			currentStep++
			reportProgress(onProgress, currentStep, totalSteps)
			continue
		}

		var remoteFile library.AssetRef
		if !recording.File.IsEmpty() {
			fileURL, size, err := o.transcodeToRemote(ctx, recording.File.Value, assets.CategoryRecording)
			if err != nil {
				o.logger.Warn("recording asset transfer failed, pushing recording without file",
					zap.String("recording_id", recording.ID),
					zap.Error(err))
				report.add(StepAsset, recording.ID, OutcomeFailed, err)
			} else {
				remoteFile = library.RemoteRef(fileURL)
				report.BytesTransferred += size
				report.add(StepAsset, recording.ID, OutcomeOK, nil)
			}
		}

		_, err := o.remote.CreateRecording(ctx, &library.RecordingFields{
			ComposerID: remoteComposerID,
			Title:      recording.Title,
			Performer:  recording.Performer,
			Duration:   recording.Duration,
			Year:       recording.Year,
			File:       remoteFile,
		})
		if err != nil {
			o.logger.Error("remote recording insert failed",
				zap.String("recording_id", recording.ID),
				zap.Error(err))
			report.add(StepRecording, recording.ID, OutcomeFailed, err)
		} else {
			report.add(StepRecording, recording.ID, OutcomeOK, nil)
		}

		currentStep++
		reportProgress(onProgress, currentStep, totalSteps)
	}

	o.logger.Info("push complete",
		zap.String("composer_id", composer.ID),
		zap.Int("steps", len(report.Steps)),
		zap.Int("failed", len(report.Failures())),
		zap.Int64("bytes", report.BytesTransferred))

	return report, nil
}

// PullComposer copies a remote composer subtree into the local store under a
// fresh id, appending CopySuffix to the name. The initial subtree fetch is
// the only fatal step; everything after it is best-effort.
func (o *Orchestrator) PullComposer(ctx context.Context, remoteComposerID string, onProgress ProgressFunc) (*Report, error) {
	composer, err := o.remote.GetComposerWithChildren(ctx, remoteComposerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote composer %s: %w", remoteComposerID, err)
	}

	report := &Report{}
	totalSteps := 1 + len(composer.Works) + len(composer.Recordings)
	currentStep := 0

	o.logger.Info("starting pull",
		zap.String("remote_composer_id", remoteComposerID),
		zap.String("name", composer.Name),
		zap.Int("works", len(composer.Works)),
		zap.Int("recordings", len(composer.Recordings)))

	var localImage library.AssetRef
	if !composer.Image.IsEmpty() {
		imagePath, size, err := o.transcodeToLocal(ctx, composer.Image.Value, assets.CategoryAvatar)
		if err != nil {
			o.logger.Warn("avatar download failed, pulling composer without image",
				zap.String("composer_id", composer.ID),
				zap.Error(err))
			report.add(StepAsset, composer.ID, OutcomeFailed, err)
		} else {
			localImage = library.LocalRef(imagePath)
			report.BytesTransferred += size
			report.add(StepAsset, composer.ID, OutcomeOK, nil)
		}
	}

	var localComposerID string
	created, err := o.local.CreateComposer(&library.ComposerFields{
		Name:   composer.Name + CopySuffix,
		Period: composer.Period,
		Image:  localImage,
	})
	if err != nil {
		o.logger.Error("local composer insert failed",
			zap.String("composer_id", composer.ID),
			zap.Error(err))
		report.add(StepComposer, composer.ID, OutcomeFailed, err)
	} else {
		localComposerID = created.ID
		report.add(StepComposer, composer.ID, OutcomeOK, nil)
	}
	currentStep++
	reportProgress(onProgress, currentStep, totalSteps)

	for _, work := range composer.Works {
		if localComposerID == "" {
			report.add(StepWork, work.ID, OutcomeSkipped, nil)
			currentStep++
			reportProgress(onProgress, currentStep, totalSteps)
			continue
		}

		var localFile library.AssetRef
		if !work.File.IsEmpty() {
			filePath, size, err := o.transcodeToLocal(ctx, work.File.Value, assets.CategorySheet)
			if err != nil {
				o.logger.Warn("work asset download failed, pulling work without file",
					zap.String("work_id", work.ID),
					zap.Error(err))
				report.add(StepAsset, work.ID, OutcomeFailed, err)
			} else {
				localFile = library.LocalRef(filePath)
				report.BytesTransferred += size
				report.add(StepAsset, work.ID, OutcomeOK, nil)
			}
		}

		_, err := o.local.CreateWork(&library.WorkFields{
			ComposerID: localComposerID,
			Title:      work.Title,
			Edition:    work.Edition,
			Year:       work.Year,
			File:       localFile,
		})
		if err != nil {
			o.logger.Error("local work insert failed",
				zap.String("work_id", work.ID),
				zap.Error(err))
			report.add(StepWork, work.ID, OutcomeFailed, err)
		} else {
			report.add(StepWork, work.ID, OutcomeOK, nil)
		}

		currentStep++
		reportProgress(onProgress, currentStep, totalSteps)
	}

	for _, recording := range composer.Recordings {
		if localComposerID == "" {
			report.add(StepRecording, recording.ID, OutcomeSkipped, nil)
			currentStep++
			reportProgress(onProgress, currentStep, totalSteps)
			continue
		}

		var localFile library.AssetRef
		if !recording.File.IsEmpty() {
			filePath, size, err := o.transcodeToLocal(ctx, recording.File.Value, assets.CategoryRecording)
			if err != nil {
				o.logger.Warn("recording asset download failed, pulling recording without file",
					zap.String("recording_id", recording.ID),
					zap.Error(err))
				report.add(StepAsset, recording.ID, OutcomeFailed, err)
			} else {
				localFile = library.LocalRef(filePath)
				report.BytesTransferred += size
				report.add(StepAsset, recording.ID, OutcomeOK, nil)
			}
		}

		_, err := o.local.CreateRecording(&library.RecordingFields{
			ComposerID: localComposerID,
			Title:      recording.Title,
			Performer:  recording.Performer,
			Duration:   recording.Duration,
			Year:       recording.Year,
			File:       localFile,
		})
		if err != nil {
			o.logger.Error("local recording insert failed",
				zap.String("recording_id", recording.ID),
				zap.Error(err))
			report.add(StepRecording, recording.ID, OutcomeFailed, err)
		} else {
			report.add(StepRecording, recording.ID, OutcomeOK, nil)
		}

		currentStep++
		reportProgress(onProgress, currentStep, totalSteps)
	}

	o.logger.Info("pull complete",
		zap.String("remote_composer_id", remoteComposerID),
		zap.Int("steps", len(report.Steps)),
		zap.Int("failed", len(report.Failures())),
		zap.Int64("bytes", report.BytesTransferred))

	return report, nil
}

// transcodeToRemote moves one asset local -> remote: read as base64, decode,
// infer the content type from the local path, upload under a fresh asset id.
func (o *Orchestrator) transcodeToRemote(ctx context.Context, localPath string, category assets.Category) (string, int64, error) {
	encoded, err := o.localAssets.ReadBase64(localPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read local asset: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode local asset: %w", err)
	}

	contentType := assets.ContentTypeForPath(localPath)
	ext := filepath.Ext(localPath)

	objectURL, err := o.remoteAssets.Upload(ctx, data, contentType, category, uuid.NewString(), ext)
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload asset: %w", err)
	}

	return objectURL, int64(len(data)), nil
}

// transcodeToLocal moves one asset remote -> local: fetch the URL, re-encode
// to base64, write under a fresh asset id. The category comes from the
// calling context, never from the URL.
func (o *Orchestrator) transcodeToLocal(ctx context.Context, remoteURL string, category assets.Category) (string, int64, error) {
	data, err := o.fetcher.FetchBytes(ctx, remoteURL)
	if err != nil {
		return "", 0, fmt.Errorf("failed to download asset: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	localPath, err := o.localAssets.WriteBase64(encoded, category, uuid.NewString(), extFromURL(remoteURL))
	if err != nil {
		return "", 0, fmt.Errorf("failed to write local asset: %w", err)
	}

	return localPath, int64(len(data)), nil
}

func reportProgress(onProgress ProgressFunc, currentStep, totalSteps int) {
	if onProgress == nil {
		return
	}
	onProgress(int(math.Round(float64(currentStep) / float64(totalSteps) * 100)))
}

func extFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return path.Ext(rawURL)
	}
	return path.Ext(parsed.Path)
}
