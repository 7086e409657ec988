package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compressor prepares a staged image for upload: bounded dimensions, bounded
// encoded size. It returns the output filename (the object key is derived
// from it) alongside the encoded bytes.
type Compressor interface {
	Compress(filename string, data []byte) (string, []byte, error)
}

// StagedFile is a local image file selected in the admin form but not yet
// uploaded.
type StagedFile struct {
	Name string
	Data []byte
}

type bufferState int

const (
	stateIdle bufferState = iota
	stateEditing
	stateSubmitting
)

// FormBuffer is the staging area for the record being created or edited.
// Exactly one record is in edit at a time; beginning a new edit overwrites
// the buffer wholesale. Fields are updated through the typed setters only.
type FormBuffer struct {
	editID string // bound record id, empty while creating
	fields domain.Product
	staged []StagedFile
	state  bufferState
}

func (b *FormBuffer) EditingID() string     { return b.editID }
func (b *FormBuffer) Fields() domain.Product { return b.fields }
func (b *FormBuffer) Editing() bool         { return b.state == stateEditing }

func (b *FormBuffer) SetName(v string)        { b.fields.Name = v }
func (b *FormBuffer) SetBrand(v string)       { b.fields.Brand = v }
func (b *FormBuffer) SetDescription(v string) { b.fields.Description = v }
func (b *FormBuffer) SetPrice(v float64)      { b.fields.Price = v }
func (b *FormBuffer) SetKilometers(v float64) { b.fields.Kilometers = v }
func (b *FormBuffer) SetFuel(v string)        { b.fields.Fuel = v }
func (b *FormBuffer) SetGearbox(v string)     { b.fields.Gearbox = v }
func (b *FormBuffer) SetPower(v string)       { b.fields.Power = v }
func (b *FormBuffer) SetTop(v bool)           { b.fields.Top = v }
func (b *FormBuffer) SetMesAno(v string)      { b.fields.MesAno = v }
func (b *FormBuffer) SetCor(v string)         { b.fields.Cor = v }
func (b *FormBuffer) SetLugares(v string)     { b.fields.Lugares = v }
func (b *FormBuffer) SetPortas(v string)      { b.fields.Portas = v }
func (b *FormBuffer) SetOrigem(v string)      { b.fields.Origem = v }
func (b *FormBuffer) SetRegistos(v string)    { b.fields.Registos = v }
func (b *FormBuffer) SetInspecao(v string)    { b.fields.Inspecao = v }
func (b *FormBuffer) SetGarantia(v string)    { b.fields.Garantia = v }

// StageFile adds a pending local image. Staged files replace the record's
// existing image set on submit.
func (b *FormBuffer) StageFile(name string, data []byte) {
	b.staged = append(b.staged, StagedFile{Name: name, Data: data})
}

// AdminUsecase orchestrates the mutation workflow: image compression and
// upload, document writes, and the local product list shown in the panel.
// It is a single-operator workflow; callers serialize access per admin
// session.
type AdminUsecase struct {
	repo   domain.ProductRepository
	store  domain.ImageStore
	comp   Compressor
	logger *zap.Logger
	now    func() time.Time

	products []domain.Product
	buffer   FormBuffer
}

func NewAdminUsecase(repo domain.ProductRepository, store domain.ImageStore, comp Compressor, logger *zap.Logger) *AdminUsecase {
	return &AdminUsecase{
		repo:   repo,
		store:  store,
		comp:   comp,
		logger: logger,
		now:    time.Now,
	}
}

// Load refreshes the local product list with a full collection fetch.
func (uc *AdminUsecase) Load(ctx context.Context) error {
	products, err := uc.repo.FetchAll(ctx)
	if err != nil {
		uc.logger.Error("admin load: fetch failed", zap.Error(err))
		return err
	}
	uc.products = products
	return nil
}

// Products returns the current local snapshot.
func (uc *AdminUsecase) Products() []domain.Product {
	return uc.products
}

// Buffer exposes the form buffer for field updates.
func (uc *AdminUsecase) Buffer() *FormBuffer {
	return &uc.buffer
}

// BeginCreate clears the buffer for a new record.
func (uc *AdminUsecase) BeginCreate() {
	uc.buffer = FormBuffer{state: stateEditing}
}

// BeginEdit populates the buffer wholesale from the product's current
// persisted values and clears any pending local image selections. A later
// edit intent simply overwrites whatever was in the buffer; in-flight work
// from a previous intent is not cancelled (last write wins).
func (uc *AdminUsecase) BeginEdit(ctx context.Context, id string) error {
	p := uc.findLocal(id)
	if p == nil {
		fetched, err := uc.repo.FetchByID(ctx, id)
		if err != nil {
			return err
		}
		p = fetched
	}
	uc.buffer = FormBuffer{
		editID: p.ID,
		fields: *p,
		state:  stateEditing,
	}
	return nil
}

// Cancel discards the buffer.
func (uc *AdminUsecase) Cancel() {
	uc.buffer = FormBuffer{}
}

// Submit runs the full mutation: validate, compress and upload staged
// images concurrently, then create or update the document. One failed
// upload aborts the whole submit before any document write, so no record
// ever persists a partial image set. On failure the buffer is kept intact
// so the operator can retry without re-entering data; on success it is
// cleared and the product list re-fetched.
func (uc *AdminUsecase) Submit(ctx context.Context) error {
	if err := uc.validate(); err != nil {
		return err
	}

	uc.buffer.state = stateSubmitting
	record := uc.buffer.fields

	if len(uc.buffer.staged) > 0 {
		refs, err := uc.uploadStaged(ctx, uc.buffer.staged)
		if err != nil {
			uc.buffer.state = stateEditing
			return fmt.Errorf("%w: %v", domain.ErrUpload, err)
		}
		record.Images = refs
	}

	var err error
	if id := uc.buffer.editID; id != "" {
		record.ID = id
		err = uc.repo.Update(ctx, &record)
	} else {
		_, err = uc.repo.Create(ctx, &record)
	}
	if err != nil {
		uc.logger.Error("admin submit: document write failed",
			zap.String("product_id", uc.buffer.editID), zap.Error(err))
		uc.buffer.state = stateEditing
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.buffer = FormBuffer{}
	return uc.Load(ctx)
}

// Delete removes a record: best-effort deletion of each image blob, then the
// document, then the local list entry. An individual blob deletion failure
// is logged as an orphaned asset and never blocks the record deletion. The
// local list is only mutated after the store confirms the delete; a delete
// does not trigger a re-fetch.
func (uc *AdminUsecase) Delete(ctx context.Context, id string) error {
	p, err := uc.repo.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	for _, img := range p.Images {
		path, ok := img.DeletionPath()
		if !ok {
			continue
		}
		if err := uc.store.Delete(ctx, path); err != nil {
			uc.logger.Warn("admin delete: orphaned storage object",
				zap.String("product_id", id), zap.String("path", path), zap.Error(err))
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	kept := uc.products[:0]
	for _, existing := range uc.products {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	uc.products = kept
	return nil
}

func (uc *AdminUsecase) validate() error {
	f := uc.buffer.fields
	if f.Name == "" || f.Brand == "" || f.Price < 0 {
		return domain.ErrValidation
	}
	return nil
}

// uploadStaged compresses and uploads every staged file concurrently
// (fan-out/fan-in). Each upload produces an independent {url, path} pair
// keyed by its own filename and the submission timestamp, so completion
// order is irrelevant; the first error cancels the group and discards any
// results already produced.
func (uc *AdminUsecase) uploadStaged(ctx context.Context, staged []StagedFile) ([]domain.ImageRef, error) {
	refs := make([]domain.ImageRef, len(staged))
	stamp := uc.now().UnixMilli()

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range staged {
		i, file := i, file
		g.Go(func() error {
			name, data, err := uc.comp.Compress(file.Name, file.Data)
			if err != nil {
				return fmt.Errorf("compress %s: %w", file.Name, err)
			}
			key := fmt.Sprintf("products/%s-%d", name, stamp)
			url, err := uc.store.Upload(gctx, key, data, "image/jpeg")
			if err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			refs[i] = domain.ImageRef{URL: url, Path: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

func (uc *AdminUsecase) findLocal(id string) *domain.Product {
	for i := range uc.products {
		if uc.products[i].ID == id {
			return &uc.products[i]
		}
	}
	return nil
}
