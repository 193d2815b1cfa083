package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
)

func TestInvitation_Integration_CreateAndAccept(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	members := services.NewMemberService(tdb.DB)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	invitee := fixtures.CreateUser(t)

	invitation, err := invites.Create(ctx, invitee.Email, workspace.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)

	member, err := invites.Accept(ctx, invitation.ID, invitee)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, workspace.ID, member.WorkspaceID)

	// The membership is visible through the member service.
	got, err := members.Get(ctx, invitee.ID, workspace.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.RoleMember, got.Role)

	// A consumed invitation cannot be accepted twice.
	_, err = invites.Accept(ctx, invitation.ID, invitee)
	assert.ErrorIs(t, err, services.ErrInvitationAlreadyUsed)
}

func TestInvitation_Integration_DuplicatePending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)

	_, err := invites.Create(ctx, "pending@example.com", workspace.ID, admin.ID)
	require.NoError(t, err)

	// The partial unique index rejects a second pending invitation for the
	// same address in the same workspace.
	_, err = invites.Create(ctx, "pending@example.com", workspace.ID, admin.ID)
	assert.ErrorIs(t, err, services.ErrDuplicateInvitation)
}

func TestInvitation_Integration_AcceptEmailMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	members := services.NewMemberService(tdb.DB)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	invitation := fixtures.CreateInvitation(t, workspace, admin, "intended@example.com", time.Now().Add(time.Hour))

	interloper := fixtures.CreateUser(t)

	_, err := invites.Accept(ctx, invitation.ID, interloper)
	assert.ErrorIs(t, err, services.ErrEmailMismatch)

	// The failed accept left no membership behind.
	got, err := members.Get(ctx, interloper.ID, workspace.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvitation_Integration_AcceptExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	invitee := fixtures.CreateUser(t)
	invitation := fixtures.CreateInvitation(t, workspace, admin, invitee.Email, time.Now().Add(-time.Minute))

	_, err := invites.Accept(ctx, invitation.ID, invitee)
	assert.ErrorIs(t, err, services.ErrInvitationExpired)
}

func TestInvitation_Integration_RevokeThenReinvite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)

	invitation, err := invites.Create(ctx, "revoked@example.com", workspace.ID, admin.ID)
	require.NoError(t, err)

	require.NoError(t, invites.Revoke(ctx, invitation.ID))

	// Revoking frees the pending slot, so the same address can be invited again.
	_, err = invites.Create(ctx, "revoked@example.com", workspace.ID, admin.ID)
	require.NoError(t, err)

	pending, err := invites.ListPending(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestInvitation_Integration_ExpiredDoesNotBlockReinvite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	stale := fixtures.CreateInvitation(t, workspace, admin, "slow@example.com", time.Now().Add(-time.Minute))

	// The expired row still sits in the pending unique index; a fresh
	// invitation sweeps it rather than bouncing off the constraint.
	fresh, err := invites.Create(ctx, "slow@example.com", workspace.ID, admin.ID)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)

	pending, err := invites.ListPending(ctx, workspace.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fresh.ID, pending[0].ID)

	// The stale row also stays revocable, even though it is past expiry.
	revivable := fixtures.CreateInvitation(t, workspace, admin, "other@example.com", time.Now().Add(-time.Minute))
	require.NoError(t, invites.Revoke(ctx, revivable.ID))
}

func TestInvitation_Integration_ConcurrentAccept(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	members := services.NewMemberService(tdb.DB)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	invitee := fixtures.CreateUser(t)

	invitation, err := invites.Create(ctx, invitee.Email, workspace.ID, admin.ID)
	require.NoError(t, err)

	// Two accepts race on the same invitation. The row lock serializes them:
	// one wins, the other sees a consumed invitation.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := invites.Accept(ctx, invitation.ID, invitee)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, services.ErrInvitationAlreadyUsed)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	// Exactly one membership row exists for the invitee: admin plus invitee.
	list, err := members.List(ctx, workspace.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInvitation_Integration_ClientInviteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb, fixtures := setupTest(t)
	invites := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	members := services.NewMemberService(tdb.DB)
	projects := services.NewProjectService(tdb.DB)
	users := services.NewUserService(tdb.DB)
	ctx := context.Background()

	admin := fixtures.CreateUser(t)
	workspace := fixtures.CreateWorkspace(t, admin)
	project := fixtures.CreateProject(t, workspace, admin)

	invite, err := invites.CreateClientInvite(ctx, "client@example.com", project.ID, admin.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, invite.Token)

	client, err := invites.AcceptClientInvite(ctx, invite.Token, "Client User", "client-password")
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", client.Email)

	// Accepting created the account, a client membership, and project access.
	verified, err := users.VerifyPassword(ctx, "client@example.com", "client-password")
	require.NoError(t, err)
	assert.Equal(t, client.ID, verified.ID)

	member, err := members.Get(ctx, client.ID, workspace.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, models.RoleClient, member.Role)

	ids, err := projects.UserProjectIDs(ctx, client.ID, workspace.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, project.ID)

	// The token is single-use.
	_, err = invites.AcceptClientInvite(ctx, invite.Token, "Client User", "client-password")
	assert.ErrorIs(t, err, services.ErrInvitationAlreadyUsed)
}
