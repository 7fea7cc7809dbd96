package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dealdesk/dealdesk/internal/auth"
	"github.com/dealdesk/dealdesk/internal/transaction"
)

var (
	agent      = auth.Identity{UserID: "agent-1", Role: auth.RoleAgent}
	otherAgent = auth.Identity{UserID: "agent-2", Role: auth.RoleAgent}
	admin      = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
)

func ownedTx(id uuid.UUID, status transaction.Status) *transaction.Transaction {
	return &transaction.Transaction{
		ID:      id,
		AgentID: agent.UserID,
		Status:  status,
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction, entry *transaction.StatusHistoryEntry) error {
						assert.Equal(t, transaction.StatusDraft, tx.Status)
						assert.Equal(t, agent.UserID, tx.AgentID)
						assert.Equal(t, transaction.StatusDraft, entry.Status)
						assert.Equal(t, agent.UserID, entry.ChangedBy)
						assert.Equal(t, "Transaction created", entry.Notes)

						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), agent, transaction.CreateParams{
				MarketType: transaction.MarketSecondary,
				Type:       transaction.TypeSale,
				Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				ClientName: "Jane Buyer",
				TotalPrice: decimal.NewFromInt(1_200_000),
			})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, transaction.StatusDraft, got.Status)
		})
	}
}

func TestService_Get(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		caller    auth.Identity
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "OwnerSeesHistoryAndDocuments",
			caller: agent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
				m.EXPECT().ListHistory(gomock.Any(), id).Return([]*transaction.StatusHistoryEntry{{Status: transaction.StatusDraft}}, nil)
				m.EXPECT().ListDocuments(gomock.Any(), id).Return([]*transaction.Document{{Name: "spa.pdf"}}, nil)
			},
		},
		{
			name:   "NonOwnerGetsNotFound",
			caller: otherAgent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
			},
			wantErr: transaction.ErrNotFound,
		},
		{
			name:   "AdminSeesAnything",
			caller: admin,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusApproved), nil)
				m.EXPECT().ListHistory(gomock.Any(), id).Return(nil, nil)
				m.EXPECT().ListDocuments(gomock.Any(), id).Return(nil, nil)
			},
		},
		{
			name:   "Missing",
			caller: agent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)
			},
			wantErr: transaction.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.Get(context.Background(), tt.caller, id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, id, got.Transaction.ID)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		caller     auth.Identity
		status     transaction.Status
		note       string
		setupMock  func(m *transaction.MockRepository)
		wantErr    error
		wantStatus transaction.Status
	}

	tests := []testCase{
		{
			name:   "AgentCannotApprove",
			caller: agent,
			status: transaction.StatusApproved,
			// No repo calls: the allow-list rejects before any lookup.
			setupMock: func(m *transaction.MockRepository) {},
			wantErr:   transaction.ErrForbidden,
		},
		{
			name:      "AgentCannotCancel",
			caller:    agent,
			status:    transaction.StatusCancelled,
			setupMock: func(m *transaction.MockRepository) {},
			wantErr:   transaction.ErrForbidden,
		},
		{
			name:   "SameStatusIsNoOp",
			caller: agent,
			status: transaction.StatusDraft,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
			},
			wantStatus: transaction.StatusDraft,
		},
		{
			name:   "PendingReviewOnlyFromDraft",
			caller: agent,
			status: transaction.StatusPendingReview,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusRejected), nil)
			},
			wantErr: transaction.ErrInvalidTransition,
		},
		{
			name:   "DraftToPendingReview",
			caller: agent,
			status: transaction.StatusPendingReview,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
				m.EXPECT().
					UpdateStatus(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
						assert.Equal(t, "Status changed to pending_review", change.Notes)
						assert.Equal(t, agent.UserID, change.ChangedBy)
						assert.Nil(t, change.ReviewNotes)

						return ownedTx(id, change.Status), nil
					})
			},
			wantStatus: transaction.StatusPendingReview,
		},
		{
			name:   "CustomNoteKept",
			caller: agent,
			status: transaction.StatusPendingReview,
			note:   "ready for checks",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
				m.EXPECT().
					UpdateStatus(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
						assert.Equal(t, "ready for checks", change.Notes)
						return ownedTx(id, change.Status), nil
					})
			},
			wantStatus: transaction.StatusPendingReview,
		},
		{
			name:   "NonOwnerGetsNotFound",
			caller: otherAgent,
			status: transaction.StatusDraft,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusPendingReview), nil)
			},
			wantErr: transaction.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.UpdateStatus(context.Background(), tt.caller, id, tt.status, tt.note)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestService_AdminUpdateStatus(t *testing.T) {
	id := uuid.New()

	t.Run("NonAdminForbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		svc := transaction.NewService(repo)

		_, err := svc.AdminUpdateStatus(context.Background(), agent, id, transaction.StatusApproved, "", "")
		assert.ErrorIs(t, err, transaction.ErrForbidden)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		svc := transaction.NewService(repo)

		_, err := svc.AdminUpdateStatus(context.Background(), admin, id, transaction.Status("archived"), "", "")
		assert.ErrorIs(t, err, transaction.ErrInvalidTransition)
	})

	t.Run("ReviewNotePreferred", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusPendingReview), nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
				assert.Equal(t, "documents verified", change.Notes)
				require.NotNil(t, change.ReviewNotes)
				assert.Equal(t, "documents verified", *change.ReviewNotes)

				return ownedTx(id, change.Status), nil
			})

		svc := transaction.NewService(repo)
		got, err := svc.AdminUpdateStatus(context.Background(), admin, id, transaction.StatusApproved, "general note", "documents verified")
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusApproved, got.Status)
	})

	t.Run("DefaultNoteWhenBothEmpty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusPendingApproval), nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
				assert.Equal(t, "Status changed to rejected", change.Notes)
				return ownedTx(id, change.Status), nil
			})

		svc := transaction.NewService(repo)
		got, err := svc.AdminUpdateStatus(context.Background(), admin, id, transaction.StatusRejected, "", "")
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusRejected, got.Status)
	})

	t.Run("SameStatusIsNoOp", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusApproved), nil)

		svc := transaction.NewService(repo)
		got, err := svc.AdminUpdateStatus(context.Background(), admin, id, transaction.StatusApproved, "dup", "")
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusApproved, got.Status)
	})
}

func TestService_SubmitForReview(t *testing.T) {
	id := uuid.New()

	t.Run("DraftSubmits", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, change transaction.StatusChange) (*transaction.Transaction, error) {
				assert.Equal(t, transaction.StatusPendingReview, change.Status)
				assert.Equal(t, "Submitted for review", change.Notes)

				return ownedTx(id, change.Status), nil
			})

		svc := transaction.NewService(repo)
		got, err := svc.SubmitForReview(context.Background(), agent, id)
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusPendingReview, got.Status)
	})

	t.Run("NonDraftRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusApproved), nil)

		svc := transaction.NewService(repo)
		_, err := svc.SubmitForReview(context.Background(), agent, id)
		assert.ErrorIs(t, err, transaction.ErrInvalidTransition)
	})

	t.Run("AdminCannotSubmitForeignDraft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)

		svc := transaction.NewService(repo)
		_, err := svc.SubmitForReview(context.Background(), admin, id)
		assert.ErrorIs(t, err, transaction.ErrForbidden)
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		caller    auth.Identity
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "AgentDeletesOwnDraft",
			caller: agent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
				m.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)
			},
		},
		{
			name:   "AgentCannotDeleteSubmitted",
			caller: agent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusPendingReview), nil)
			},
			wantErr: transaction.ErrForbidden,
		},
		{
			name:   "AdminDeletesAnyStatus",
			caller: admin,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusApproved), nil)
				m.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)
			},
		},
		{
			name:   "NonOwnerGetsNotFound",
			caller: otherAgent,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
			},
			wantErr: transaction.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			err := svc.Delete(context.Background(), tt.caller, id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_ListMine(t *testing.T) {
	type testCase struct {
		name        string
		limit       int
		offset      int
		total       int
		wantLimit   int
		wantOffset  int
		wantHasMore bool
	}

	tests := []testCase{
		{
			name:        "DefaultsApplied",
			limit:       0,
			offset:      -5,
			total:       25,
			wantLimit:   10,
			wantOffset:  0,
			wantHasMore: true,
		},
		{
			name:        "LimitClampedToMax",
			limit:       500,
			offset:      0,
			total:       40,
			wantLimit:   100,
			wantOffset:  0,
			wantHasMore: false,
		},
		{
			name:        "LastPage",
			limit:       10,
			offset:      20,
			total:       25,
			wantLimit:   10,
			wantOffset:  20,
			wantHasMore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)

			wantFilter := transaction.ListFilter{
				AgentID: &agent.UserID,
				Limit:   tt.wantLimit,
				Offset:  tt.wantOffset,
			}
			repo.EXPECT().ListTransactions(gomock.Any(), wantFilter).Return([]*transaction.Transaction{{ID: uuid.New()}}, nil)
			repo.EXPECT().CountTransactions(gomock.Any(), wantFilter).Return(tt.total, nil)

			svc := transaction.NewService(repo)
			got, err := svc.ListMine(context.Background(), agent, nil, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Equal(t, tt.total, got.TotalCount)
			assert.Equal(t, tt.wantHasMore, got.HasMore)
		})
	}
}

func TestService_ListAll_Forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	_, err := svc.ListAll(context.Background(), agent, transaction.AdminListFilter{})
	assert.ErrorIs(t, err, transaction.ErrForbidden)
}

func TestService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txs := []*transaction.Transaction{
		{Status: transaction.StatusDraft},
		{Status: transaction.StatusPendingReview},
		{Status: transaction.StatusPendingApproval},
		{Status: transaction.StatusApproved, CommissionValue: decimal.NewFromInt(24_000)},
		{Status: transaction.StatusApproved, CommissionValue: decimal.NewFromInt(6_000)},
		{Status: transaction.StatusRejected},
		{Status: transaction.StatusCancelled},
	}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{AgentID: &agent.UserID, Limit: -1}).
		Return(txs, nil)

	svc := transaction.NewService(repo)
	got, err := svc.Stats(context.Background(), agent)

	require.NoError(t, err)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 1, got.Draft)
	assert.Equal(t, 2, got.Pending)
	assert.Equal(t, 2, got.Approved)
	assert.Equal(t, 1, got.Rejected)
	assert.True(t, got.TotalCommission.Equal(decimal.NewFromInt(30_000)))
}

func TestService_AdminStats(t *testing.T) {
	t.Run("Forbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		svc := transaction.NewService(repo)

		_, err := svc.AdminStats(context.Background(), agent)
		assert.ErrorIs(t, err, transaction.ErrForbidden)
	})

	t.Run("ApprovedOnlyTotals", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		txs := []*transaction.Transaction{
			{Status: transaction.StatusPendingReview, TotalPrice: decimal.NewFromInt(900_000)},
			{Status: transaction.StatusApproved, TotalPrice: decimal.NewFromInt(1_200_000), CommissionValue: decimal.NewFromInt(24_000)},
			{Status: transaction.StatusRejected, TotalPrice: decimal.NewFromInt(500_000)},
		}

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().
			ListTransactions(gomock.Any(), transaction.ListFilter{Limit: -1}).
			Return(txs, nil)

		svc := transaction.NewService(repo)
		got, err := svc.AdminStats(context.Background(), admin)

		require.NoError(t, err)
		assert.Equal(t, 3, got.Total)
		assert.Equal(t, 1, got.PendingReview)
		assert.Equal(t, 1, got.Approved)
		assert.Equal(t, 1, got.Rejected)
		assert.True(t, got.TotalValue.Equal(decimal.NewFromInt(1_200_000)))
		assert.True(t, got.TotalCommission.Equal(decimal.NewFromInt(24_000)))
	})
}

func TestService_AttachDocument(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(ownedTx(id, transaction.StatusDraft), nil)
	repo.EXPECT().
		AddDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *transaction.Document) error {
			assert.Equal(t, id, doc.TransactionID)
			assert.Equal(t, agent.UserID, doc.UploadedBy)

			doc.ID = uuid.New()
			return nil
		})

	svc := transaction.NewService(repo)
	got, err := svc.AttachDocument(context.Background(), agent, id, transaction.DocumentParams{
		Name: "spa.pdf",
		URL:  "https://files.example.com/spa.pdf",
		Type: transaction.DocumentAgreement,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "spa.pdf", got.Name)
}
