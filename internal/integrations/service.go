package integrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/security"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// Service connects external stores and syncs their catalogue.
type Service interface {
	Platforms() []Platform
	List(ctx context.Context) ([]IntegrationDTO, error)
	Get(ctx context.Context, id int64) (*IntegrationDTO, error)
	Connect(ctx context.Context, input ConnectInput) (*IntegrationDTO, error)
	Test(ctx context.Context, id int64) (*TestResult, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*IntegrationDTO, error)
	Disconnect(ctx context.Context, id int64) (*ActionResult, error)
	Sync(ctx context.Context, id int64, scope string) (*SyncResult, error)
	Stats(ctx context.Context, id int64) (*Stats, error)
}

// ServiceParams wires the integrations service.
type ServiceParams struct {
	Repo     Repository
	Products products.Repository
	Tx       txRunner
	Sealer   *security.Sealer
	Clients  ClientFactory
	Notifier notifier
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	sealer   *security.Sealer
	clients  ClientFactory
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the integrations service. Clients defaults to NewStoreClient.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil || params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "integration repositories required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Sealer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "credential sealer required")
	}
	clients := params.Clients
	if clients == nil {
		clients = NewStoreClient
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		tx:       params.Tx,
		sealer:   params.Sealer,
		clients:  clients,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) Platforms() []Platform {
	return Platforms()
}

func (s *service) List(ctx context.Context) ([]IntegrationDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list integrations")
	}
	out := make([]IntegrationDTO, 0, len(rows))
	for i := range rows {
		creds, err := s.open(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, toDTO(&rows[i], creds))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*IntegrationDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	creds, err := s.open(row)
	if err != nil {
		return nil, err
	}
	dto := toDTO(row, creds)
	return &dto, nil
}

func (s *service) Connect(ctx context.Context, input ConnectInput) (*IntegrationDTO, error) {
	platform, ok := findPlatform(input.Platform)
	if !ok || platform.Status != StatusAvailable {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Platform '%s' is not available", input.Platform).
			WithDetails(map[string]any{"available_platforms": availablePlatforms()})
	}
	storeURL := strings.TrimSpace(input.StoreURL)
	name := strings.TrimSpace(input.StoreName)
	if storeURL == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_name and store_url are required")
	}

	existing, err := s.repo.FindActiveByStore(ctx, input.Platform, storeURL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing integration")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "This store is already connected")
	}

	creds := input.credentials()
	row := &models.Integration{
		Platform:   input.Platform,
		StoreName:  name,
		StoreURL:   storeURL,
		SyncStatus: enums.SyncStatusPending,
		IsActive:   true,
	}
	if err := s.seal(row, creds); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create integration")
	}
	dto := toDTO(created, creds)
	return &dto, nil
}

func (s *service) Test(ctx context.Context, id int64) (*TestResult, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	creds, err := s.open(row)
	if err != nil {
		return nil, err
	}

	result := &TestResult{}
	if missing := missingCredentials(row.Platform, creds); len(missing) > 0 {
		result.Message = "Connection failed: Missing required credentials"
		s.markError(row, "Missing credentials")
	} else {
		client, err := s.clients(row.Platform, row.StoreURL, creds)
		if err != nil {
			return nil, err
		}
		conn := client.TestConnection(ctx)
		result.Success = conn.Success
		result.Message = conn.Message
		if conn.Success {
			row.SyncStatus = enums.SyncStatusSynced
			row.SyncError = nil
		} else {
			s.markError(row, conn.Message)
		}
	}

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*IntegrationDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	creds, err := s.open(row)
	if err != nil {
		return nil, err
	}

	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_name cannot be blank")
		}
		row.StoreName = name
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	if changed := input.credentials(); len(changed) > 0 {
		for k, v := range changed {
			creds[k] = v
		}
		if err := s.seal(row, creds); err != nil {
			return nil, err
		}
		// new credentials must pass a connection test before the next sync
		row.SyncStatus = enums.SyncStatusPending
		row.SyncError = nil
	}

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
	}
	dto := toDTO(row, creds)
	return &dto, nil
}

func (s *service) Disconnect(ctx context.Context, id int64) (*ActionResult, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	row.IsActive = false
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
	}
	return &ActionResult{Success: true, Message: "Disconnected " + row.StoreName}, nil
}

func (s *service) Sync(ctx context.Context, id int64, scope string) (*SyncResult, error) {
	if scope == "" {
		scope = SyncAll
	}
	if scope != SyncAll && scope != SyncProducts && scope != SyncOrders {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sync type '%s'", scope).
			WithDetails(map[string]any{"valid_types": []string{SyncAll, SyncProducts, SyncOrders}})
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !row.IsActive || (row.SyncStatus != enums.SyncStatusSynced && row.SyncStatus != enums.SyncStatusReady) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Integration is not connected").
			WithDetails(map[string]any{"sync_status": row.SyncStatus})
	}
	creds, err := s.open(row)
	if err != nil {
		return nil, err
	}
	client, err := s.clients(row.Platform, row.StoreURL, creds)
	if err != nil {
		return nil, err
	}

	row.SyncStatus = enums.SyncStatusSyncing
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
	}

	productsSynced, ordersSynced, syncErr := s.pull(ctx, row.Platform, client, scope)
	if syncErr != nil {
		s.markError(row, syncErr.Error())
		if err := s.repo.Save(ctx, row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
		}
		s.notify(ctx, notifications.CreateInput{
			Type:     enums.NotificationTypeIntegration,
			Title:    "Sync failed: " + row.StoreName,
			Message:  syncErr.Error(),
			Priority: enums.NotificationPriorityHigh,
			Metadata: map[string]any{"integration_id": row.ID},
		})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, syncErr, "Sync failed")
	}

	now := s.now().UTC()
	row.SyncStatus = enums.SyncStatusSynced
	row.SyncError = nil
	row.LastSyncAt = &now
	if scope != SyncOrders {
		row.ProductsSynced = productsSynced
	}
	if scope != SyncProducts {
		row.OrdersSynced = ordersSynced
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save integration")
	}
	s.notify(ctx, notifications.CreateInput{
		Type:     enums.NotificationTypeIntegration,
		Title:    row.StoreName + " sync complete",
		Message:  fmt.Sprintf("Synced %d products and %d orders.", row.ProductsSynced, row.OrdersSynced),
		Priority: enums.NotificationPriorityLow,
		Metadata: map[string]any{"integration_id": row.ID},
	})

	return &SyncResult{
		Success:        true,
		Message:        "Sync completed",
		ProductsSynced: row.ProductsSynced,
		OrdersSynced:   row.OrdersSynced,
	}, nil
}

// pull fetches the requested scope and upserts remote products by slug.
func (s *service) pull(ctx context.Context, platform enums.IntegrationPlatform, client StoreClient, scope string) (int, int, error) {
	var productsSynced, ordersSynced int
	if scope != SyncOrders {
		remote, err := client.FetchProducts(ctx)
		if err != nil {
			return 0, 0, err
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.products.WithTx(tx)
			for _, rp := range remote {
				if err := upsertProduct(ctx, repo, platform, rp); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, 0, err
		}
		productsSynced = len(remote)
	}
	if scope != SyncProducts {
		count, err := client.CountOrders(ctx)
		if err != nil {
			return 0, 0, err
		}
		ordersSynced = count
	}
	return productsSynced, ordersSynced, nil
}

// SyncedSlug is the catalogue slug of a product pulled from a store.
func SyncedSlug(platform enums.IntegrationPlatform, externalID string) string {
	return string(platform) + "-" + externalID
}

func upsertProduct(ctx context.Context, repo products.Repository, platform enums.IntegrationPlatform, rp RemoteProduct) error {
	slug := SyncedSlug(platform, rp.ExternalID)
	status := enums.ProductStatusPaused
	if rp.Active {
		status = enums.ProductStatusLive
	}

	existing, err := repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		existing.Name = rp.Title
		existing.Description = rp.Description
		existing.PriceCents = rp.PriceCents
		existing.MainImageURL = rp.ImageURL
		existing.InventoryQuantity = rp.Inventory
		if existing.Status != enums.ProductStatusKilled {
			existing.Status = status
		}
		_, err := repo.Save(ctx, existing)
		return err
	}

	source := enums.ImportSource(platform)
	_, err = repo.Create(ctx, &models.Product{
		Slug:              slug,
		Name:              rp.Title,
		Description:       rp.Description,
		PriceCents:        rp.PriceCents,
		MainImageURL:      rp.ImageURL,
		InventoryQuantity: rp.Inventory,
		Status:            status,
		ImportSource:      &source,
	})
	return err
}

func (s *service) Stats(ctx context.Context, id int64) (*Stats, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Platform:       row.Platform,
		IsConnected:    isConnected(row),
		SyncStatus:     row.SyncStatus,
		LastSyncAt:     row.LastSyncAt,
		ProductsSynced: row.ProductsSynced,
		OrdersSynced:   row.OrdersSynced,
		SyncError:      row.SyncError,
	}, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Integration, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Integration not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load integration")
	}
	return row, nil
}

func (s *service) seal(row *models.Integration, creds map[string]string) error {
	if len(creds) == 0 {
		row.Credentials = nil
		return nil
	}
	token, err := s.sealer.SealMap(creds)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt credentials")
	}
	row.Credentials = &token
	return nil
}

func (s *service) open(row *models.Integration) (map[string]string, error) {
	if row.Credentials == nil || *row.Credentials == "" {
		return map[string]string{}, nil
	}
	creds, err := s.sealer.OpenMap(*row.Credentials)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrypt credentials")
	}
	return creds, nil
}

func (s *service) markError(row *models.Integration, msg string) {
	row.SyncStatus = enums.SyncStatusError
	row.SyncError = &msg
}

func (s *service) notify(ctx context.Context, input notifications.CreateInput) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Create(ctx, input); err != nil && s.logg != nil {
		s.logg.WarnErr(ctx, "integrations.notify_failed", err)
	}
}

func missingCredentials(platform enums.IntegrationPlatform, creds map[string]string) []string {
	var missing []string
	for _, key := range requiredCredentials(platform) {
		if strings.TrimSpace(creds[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func availablePlatforms() []string {
	var ids []string
	for _, p := range catalogue {
		if p.Status == StatusAvailable {
			ids = append(ids, string(p.ID))
		}
	}
	return ids
}
