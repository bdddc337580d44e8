package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/config"
	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/domains/property/repository"
	"homefinder-backend/internal/infrastructure/storage"
	"homefinder-backend/internal/shared"
	"homefinder-backend/internal/shared/access"
	"homefinder-backend/internal/shared/utils"
)

type propertyService struct {
	repo      repository.Repository
	images    storage.ImageStore
	processor ImagePreparer
	queue     Enqueuer
	windows   ActiveWindowSource
	cfg       config.UploadConfig

	now func() time.Time
}

// NewPropertyService wires the listing service. queue may be nil, in which case image
// cleanup runs synchronously.
func NewPropertyService(
	repo repository.Repository,
	images storage.ImageStore,
	processor ImagePreparer,
	queue Enqueuer,
	windows ActiveWindowSource,
	cfg config.UploadConfig,
) ServiceInterface {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	return &propertyService{
		repo:      repo,
		images:    images,
		processor: processor,
		queue:     queue,
		windows:   windows,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ========================================
// CREATE / READ
// ========================================

func (s *propertyService) CreateProperty(ctx context.Context, ownerID uuid.UUID, req model.CreatePropertyRequest) (*model.Property, error) {
	// Step 1: Validate
	req.Amenities = model.SplitList(req.Amenities)
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}
	if len(req.Images) > s.cfg.MaxImages {
		return nil, model.NewTooManyImagesError(s.cfg.MaxImages)
	}

	now := s.now()
	p := &model.Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Price:         req.Price,
		Deposit:       req.Deposit,
		Location:      req.Location,
		City:          req.City,
		PropertyType:  req.PropertyType,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Area:          req.Area,
		Furnishing:    req.Furnishing,
		Amenities:     req.Amenities,
		Status:        model.StatusAvailable,
		AvailableFrom: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.AvailableFrom != nil {
		p.AvailableFrom = *req.AvailableFrom
	}

	// Step 2: Store images before the row so the listing never points at missing files
	urls, err := s.uploadImages(ctx, p.ID, req.Images)
	if err != nil {
		return nil, err
	}
	p.Images = urls

	// Step 3: Insert, removing the uploads if it fails
	if err := s.repo.Create(ctx, p); err != nil {
		s.discardImages(ctx, urls)
		return nil, err
	}

	log.Info().
		Str("property_id", p.ID.String()).
		Str("owner_id", ownerID.String()).
		Int("images", len(urls)).
		Msg("Property created")

	if full, err := s.repo.FindByID(ctx, p.ID); err == nil {
		return full, nil
	}
	return p, nil
}

func (s *propertyService) GetProperty(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPropertyNotFound) {
			return nil, model.NewPropertyNotFoundError(id)
		}
		return nil, err
	}
	return p, nil
}

// ========================================
// UPDATE / DELETE
// ========================================

func (s *propertyService) UpdateProperty(ctx context.Context, id uuid.UUID, requester access.Requester, req model.UpdatePropertyRequest) (*model.Property, error) {
	// Step 1: Load and authorize
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(p, requester); err != nil {
		return nil, model.NewForbiddenError(requester.UserID, "update")
	}

	// Step 2: Validate
	if req.Amenities != nil {
		req.Amenities = model.SplitList(req.Amenities)
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 3: Resolve the final image list
	kept, removed := resolveImages(p.Images, req.ExistingImages, req.RemoveImages)
	total := len(kept) + len(req.NewImages)
	if total > s.cfg.MaxImages {
		return nil, model.NewTooManyImagesError(s.cfg.MaxImages)
	}
	if total == 0 {
		return nil, model.NewValidationMessage("Please upload at least one image")
	}

	uploaded, err := s.uploadImages(ctx, p.ID, req.NewImages)
	if err != nil {
		return nil, err
	}

	// Step 4: Persist
	req.Apply(p)
	p.Images = append(kept, uploaded...)
	if err := s.repo.Update(ctx, p); err != nil {
		s.discardImages(ctx, uploaded)
		if errors.Is(err, model.ErrPropertyNotFound) {
			return nil, model.NewPropertyNotFoundError(id)
		}
		return nil, err
	}

	// Step 5: Drop images no longer referenced
	s.discardImages(ctx, removed)

	return p, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, id uuid.UUID, requester access.Requester) error {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(p, requester); err != nil {
		return model.NewForbiddenError(requester.UserID, "delete")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrPropertyNotFound) {
			return model.NewPropertyNotFoundError(id)
		}
		return err
	}

	if len(p.Images) > 0 {
		s.scheduleImageDeletion(ctx, p.ID, p.Images)
	}

	log.Info().
		Str("property_id", id.String()).
		Str("user_id", requester.UserID.String()).
		Msg("Property deleted")

	return nil
}

func (s *propertyService) DeleteImages(ctx context.Context, imageURLs []string) error {
	if len(imageURLs) == 0 {
		return nil
	}
	return s.images.DeleteMany(ctx, imageURLs)
}

// ========================================
// LISTING
// ========================================

func (s *propertyService) ListProperties(ctx context.Context, req model.ListPropertiesRequest) ([]*model.Property, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, model.NewValidationError(err)
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}

func (s *propertyService) ListWithAvailability(ctx context.Context) ([]model.PropertyWithAvailability, error) {
	properties, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}

	windows, err := s.windows.ActiveWindows(ctx, ids, s.now())
	if err != nil {
		return nil, fmt.Errorf("load active bookings: %w", err)
	}

	result := make([]model.PropertyWithAvailability, len(properties))
	for i, p := range properties {
		active := windows[p.ID]
		if active == nil {
			active = []model.BookingWindow{}
		}
		result[i] = model.PropertyWithAvailability{
			Property:       p,
			IsBooked:       len(active) > 0,
			ActiveBookings: active,
		}
	}
	return result, nil
}

func (s *propertyService) ListMyProperties(ctx context.Context, ownerID uuid.UUID) ([]*model.Property, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// uploadImages processes and stores every upload. On any failure the files already
// stored by this call are removed.
func (s *propertyService) uploadImages(ctx context.Context, propertyID uuid.UUID, uploads []model.ImageUpload) ([]string, error) {
	prepared := make([][]byte, len(uploads))
	contentTypes := make([]string, len(uploads))
	for i, up := range uploads {
		data, contentType, err := s.processor.Process(up.Data)
		if err != nil {
			return nil, model.NewInvalidImageError(up.Name, err)
		}
		prepared[i] = data
		contentTypes[i] = contentType
	}

	urls := make([]string, 0, len(uploads))
	for i := range prepared {
		key := imageKey(propertyID, uploads[i].Name)
		url, err := s.images.Upload(ctx, key, prepared[i], contentTypes[i])
		if err != nil {
			s.discardImages(ctx, urls)
			return nil, model.NewImageUploadError(err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// imageKey keeps a readable trace of the uploaded file name: properties/<id>/<rand>-<slug>.jpg
func imageKey(propertyID uuid.UUID, name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	slug := utils.GenerateSlug(stem)
	if slug == "" {
		slug = "image"
	}
	return fmt.Sprintf("properties/%s/%s-%s.jpg", propertyID, uuid.NewString()[:8], slug)
}

// discardImages deletes images best-effort.
func (s *propertyService) discardImages(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.images.DeleteMany(ctx, urls); err != nil {
		log.Warn().Err(err).Int("count", len(urls)).Msg("Failed to delete property images")
	}
}

// scheduleImageDeletion hands the cleanup to the worker and falls back to deleting
// inline when the queue is unavailable.
func (s *propertyService) scheduleImageDeletion(ctx context.Context, propertyID uuid.UUID, urls []string) {
	if s.queue != nil {
		payload, err := json.Marshal(shared.DeletePropertyImagesPayload{
			PropertyID: propertyID.String(),
			ImageURLs:  urls,
		})
		if err == nil {
			task := asynq.NewTask(shared.TypeDeletePropertyImages, payload)
			_, err = s.queue.EnqueueContext(ctx, task,
				asynq.Queue(shared.QueueDefault),
				asynq.MaxRetry(3),
			)
		}
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("property_id", propertyID.String()).Msg("Failed to enqueue image cleanup, deleting inline")
	}

	s.discardImages(ctx, urls)
}

// resolveImages returns the images to keep, in order, and the ones to delete.
// existing (when non-nil) selects and orders the kept images; remove drops more.
func resolveImages(current, existing, remove []string) (kept, removed []string) {
	currentSet := make(map[string]bool, len(current))
	for _, u := range current {
		currentSet[u] = true
	}

	candidates := current
	if existing != nil {
		candidates = existing
	}

	drop := make(map[string]bool, len(remove))
	for _, u := range remove {
		drop[u] = true
	}

	keptSet := make(map[string]bool)
	kept = make([]string, 0, len(candidates))
	for _, u := range candidates {
		if currentSet[u] && !drop[u] && !keptSet[u] {
			kept = append(kept, u)
			keptSet[u] = true
		}
	}

	for _, u := range current {
		if !keptSet[u] {
			removed = append(removed, u)
		}
	}
	return kept, removed
}
