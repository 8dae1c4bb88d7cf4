package accounts_test

import (
	"context"
	"testing"

	"github.com/dershop/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateUserProvisionsActivatedAccount(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	notifier := &MockNotifier{}

	manager := newManager(repo, users).
		WithNotifier(notifier).
		WithClock(fixedClock(testTime)).
		WithKeyGenerator(func() string { return "RESETKEY234567890123" })

	repo.On("RunInTx", mock.Anything, txOptsNil(), mock.Anything).
		Return(nil).Once()
	users.On("FindByLoginTx", mock.Anything, mock.Anything, "newhire").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("FindByEmailTx", mock.Anything, mock.Anything, "newhire@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	created := &accounts.Account{
		ID:        uuid.New(),
		Login:     "newhire",
		Email:     "newhire@example.com",
		Activated: true,
		ResetKey:  strPtr("RESETKEY234567890123"),
		ResetAt:   &testTime,
	}
	users.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(a *accounts.Account) bool {
		return a.Login == "newhire" &&
			a.Activated &&
			a.ResetKey != nil && *a.ResetKey == "RESETKEY234567890123" &&
			a.ResetAt != nil &&
			a.PasswordHash != "" &&
			a.CreatedBy == "admin-actor"
	})).Return(created, nil).Once()

	notifier.On("SendResetKey", mock.Anything, created, "RESETKEY234567890123").
		Return(nil).Once()

	account, err := manager.CreateUser(ctx, "admin-actor", accounts.ManagedAccountInput{
		Login:       "NewHire",
		Email:       "NewHire@example.com",
		Authorities: []accounts.Authority{accounts.AuthorityUser},
	})

	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.Activated)

	users.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateUserRejectsUnknownAuthority(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	_, err := manager.CreateUser(context.Background(), "admin-actor", accounts.ManagedAccountInput{
		Login:       "newhire",
		Email:       "newhire@example.com",
		Authorities: []accounts.Authority{"superuser"},
	})

	require.ErrorIs(t, err, accounts.ErrUnknownAuthority)
	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAccountProfileFields(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	holderID := uuid.New()
	holder := &accounts.Account{ID: holderID, Login: "alice", Email: "alice@example.com", Activated: true}

	repo.On("RunInTx", mock.Anything, txOptsNil(), mock.Anything).
		Return(nil).Once()
	users.On("FindByLoginTx", mock.Anything, mock.Anything, "alice").
		Return(holder, nil).Once()
	users.On("FindByEmailTx", mock.Anything, mock.Anything, "alice@new.example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("UpdateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(a *accounts.Account) bool {
		return a.ID == holderID &&
			a.FirstName == "Alice" &&
			a.LastName == "Liddell" &&
			a.Email == "alice@new.example.com" &&
			a.LangKey == "fr"
	})).Return(holder, nil).Once()

	account, err := manager.UpdateAccount(ctx, "alice", "Alice", "Liddell", "alice@new.example.com", "fr")
	require.NoError(t, err)
	require.NotNil(t, account)

	users.AssertExpectations(t)
}

func TestUpdateAccountRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	holder := &accounts.Account{ID: uuid.New(), Login: "alice", Email: "alice@example.com", Activated: true}
	other := &accounts.Account{ID: uuid.New(), Login: "bob", Email: "bob@example.com", Activated: true}

	repo.On("RunInTx", mock.Anything, txOptsNil(), mock.Anything).
		Return(nil).Once()
	users.On("FindByLoginTx", mock.Anything, mock.Anything, "alice").
		Return(holder, nil).Once()
	users.On("FindByEmailTx", mock.Anything, mock.Anything, "bob@example.com").
		Return(other, nil).Once()

	_, err := manager.UpdateAccount(ctx, "alice", "", "", "bob@example.com", "")
	require.ErrorIs(t, err, accounts.ErrEmailAlreadyUsed)

	users.AssertNotCalled(t, "UpdateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	holder := &accounts.Account{ID: uuid.New(), Login: "alice"}

	repo.On("RunInTx", mock.Anything, txOptsNil(), mock.Anything).
		Return(nil).Once()
	users.On("FindByLoginTx", mock.Anything, mock.Anything, "alice").
		Return(holder, nil).Once()
	users.On("DeleteByIDTx", mock.Anything, mock.Anything, holder.ID).
		Return(nil).Once()

	require.NoError(t, manager.DeleteUser(ctx, "admin-actor", "alice"))
	users.AssertExpectations(t)
}

func TestDeleteUserUnknownLoginIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	repo.On("RunInTx", mock.Anything, txOptsNil(), mock.Anything).
		Return(nil).Once()
	users.On("FindByLoginTx", mock.Anything, mock.Anything, "ghost").
		Return(nil, repository.NewRecordNotFound()).Once()

	require.NoError(t, manager.DeleteUser(ctx, "admin-actor", "ghost"))
	users.AssertNotCalled(t, "DeleteByIDTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthoritiesClosedSet(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	manager := newManager(repo, users)

	assert.ElementsMatch(t,
		[]accounts.Authority{accounts.AuthorityUser, accounts.AuthorityAdmin},
		manager.Authorities())
}
