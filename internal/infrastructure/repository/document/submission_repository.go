package document

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
)

type SubmissionRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewSubmissionRepository(store docstore.Store, ns docstore.Namespace) *SubmissionRepository {
	return &SubmissionRepository{store: store, ns: ns}
}

// Create claims the player's slot for the game date before writing the
// submission, so two concurrent claims cannot both end up pending.
func (r *SubmissionRepository) Create(ctx context.Context, s submission.Submission) error {
	body, err := encodeBody(submissionToDocument(s))
	if err != nil {
		return err
	}
	if err := r.claimSlot(ctx, s); err != nil {
		return err
	}

	opts := docstore.SetOptions{Precondition: docstore.Precondition{MustNotExist: true}}
	if _, err := r.store.Set(ctx, r.ns.Doc(CollectionSubmissions, s.ID), body, opts); err != nil {
		if relErr := r.releaseSlot(context.WithoutCancel(ctx), s); relErr != nil {
			err = crerr.CombineErrors(err, relErr)
		}
		return crerr.Wrapf(err, "create submission %s", s.ID)
	}
	return nil
}

func (r *SubmissionRepository) claimSlot(ctx context.Context, s submission.Submission) error {
	slotID := submission.SlotID(s.PlayerID, s.GameDate)
	body, err := encodeBody(slotFor(s))
	if err != nil {
		return err
	}

	opts := docstore.SetOptions{Precondition: docstore.Precondition{MustNotExist: true}}
	_, err = r.store.Set(ctx, r.ns.Doc(CollectionSubmissionSlots, slotID), body, opts)
	if err == nil {
		return nil
	}
	if !crerr.Is(err, docstore.ErrAlreadyExists) {
		return crerr.Wrapf(err, "claim submission slot %s", slotID)
	}

	held, exists, err := r.getSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if exists && held.Status == string(submission.StatusApproved) {
		return fmt.Errorf("%w: %s on %s", submission.ErrAlreadyApproved, s.PlayerID, s.GameDate)
	}
	return fmt.Errorf("%w: %s on %s", submission.ErrPendingExists, s.PlayerID, s.GameDate)
}

// releaseSlot frees the slot only while it still belongs to s.
func (r *SubmissionRepository) releaseSlot(ctx context.Context, s submission.Submission) error {
	slotID := submission.SlotID(s.PlayerID, s.GameDate)
	held, exists, err := r.getSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if !exists || held.SubmissionID != s.ID {
		return nil
	}
	if err := r.store.Delete(ctx, r.ns.Doc(CollectionSubmissionSlots, slotID)); err != nil {
		return crerr.Wrapf(err, "release submission slot %s", slotID)
	}
	return nil
}

func slotFor(s submission.Submission) submissionSlotDocument {
	return submissionSlotDocument{
		SubmissionID: s.ID,
		PlayerID:     s.PlayerID,
		GameDate:     s.GameDate,
		Status:       string(s.Status),
		ClaimedAt:    s.CreatedAt,
	}
}

func (r *SubmissionRepository) getSlot(ctx context.Context, slotID string) (submissionSlotDocument, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.ns.Doc(CollectionSubmissionSlots, slotID))
	if err != nil {
		return submissionSlotDocument{}, false, crerr.Wrapf(err, "get submission slot %s", slotID)
	}
	if !exists {
		return submissionSlotDocument{}, false, nil
	}
	d, err := decodeOne[submissionSlotDocument](doc)
	if err != nil {
		return submissionSlotDocument{}, false, err
	}
	return d, true, nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (submission.Submission, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.ns.Doc(CollectionSubmissions, id))
	if err != nil {
		return submission.Submission{}, false, crerr.Wrapf(err, "get submission %s", id)
	}
	if !exists {
		return submission.Submission{}, false, nil
	}

	d, err := decodeOne[submissionDocument](doc)
	if err != nil {
		return submission.Submission{}, false, err
	}
	return d.toDomain(), true, nil
}

// Update writes the reviewed submission. A rejection frees the player's slot
// for a fresh claim; an approval keeps it so the day stays closed.
func (r *SubmissionRepository) Update(ctx context.Context, s submission.Submission) error {
	body, err := encodeBody(submissionToDocument(s))
	if err != nil {
		return err
	}
	if _, err := r.store.Set(ctx, r.ns.Doc(CollectionSubmissions, s.ID), body, docstore.SetOptions{}); err != nil {
		return crerr.Wrapf(err, "update submission %s", s.ID)
	}

	switch s.Status {
	case submission.StatusRejected:
		return r.releaseSlot(ctx, s)
	case submission.StatusApproved:
		slotID := submission.SlotID(s.PlayerID, s.GameDate)
		body, err := encodeBody(slotFor(s))
		if err != nil {
			return err
		}
		if _, err := r.store.Set(ctx, r.ns.Doc(CollectionSubmissionSlots, slotID), body, docstore.SetOptions{}); err != nil {
			return crerr.Wrapf(err, "close submission slot %s", slotID)
		}
	}
	return nil
}

func (r *SubmissionRepository) ListByStatus(ctx context.Context, status submission.Status) ([]submission.Submission, error) {
	return r.query(ctx, []docstore.Filter{docstore.Where("status", docstore.OpEq, string(status))})
}

func (r *SubmissionRepository) ListByPlayerAndDate(ctx context.Context, playerID, gameDate string) ([]submission.Submission, error) {
	return r.query(ctx, []docstore.Filter{
		docstore.Where("playerId", docstore.OpEq, playerID),
		docstore.Where("gameDate", docstore.OpEq, gameDate),
	})
}

func (r *SubmissionRepository) query(ctx context.Context, filters []docstore.Filter) ([]submission.Submission, error) {
	docs, err := r.store.Query(ctx, r.ns.Collection(CollectionSubmissions), filters, []docstore.Order{{Field: "createdAt"}})
	if err != nil {
		return nil, crerr.Wrap(err, "query submissions")
	}

	out := make([]submission.Submission, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeOne[submissionDocument](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, nil
}
