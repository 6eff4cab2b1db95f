package result_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

func TestService_ReviewOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.submitted(t, newResult("st1", "Ada Obi"))

	tests := []struct {
		name    string
		p       core.Principal
		wantErr error
	}{
		{name: "teacher", p: f.teacher, wantErr: core.ErrAccessDenied},
		{name: "admin of another school", p: testutil.Principal("other-school", core.RoleAdmin), wantErr: result.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ReviewOne(ctx, tt.p, r.ID, result.Review{Action: result.ActionApprove})
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	// approve with edits: the admin fixes a score and the result is recomputed
	saved, err := f.svc.ReviewOne(ctx, f.admin, r.ID, result.Review{
		Action: result.ActionApprove,
		Edits: &result.UpdateResult{
			Subjects: []result.SubjectInput{{Name: "Mathematics", Scores: map[string]float64{"ca1": 15, "ca2": 15, "exam": 70}}},
			Comments: &result.Comments{Principal: "Well done"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, result.StatusApproved, saved.Status)
	assert.Equal(t, f.admin.UserID, saved.ReviewedBy)
	assert.NotNil(t, saved.ReviewedAt)
	assert.Equal(t, 90.0, saved.Total)
	assert.Equal(t, "Well done", saved.Comments.Principal)
	require.Len(t, saved.Adjustments, 1)
	assert.Equal(t, 60.0, saved.Adjustments[0].Accepted)

	_, err = f.svc.ReviewOne(ctx, f.admin, r.ID, result.Review{Action: result.ActionApprove})
	var terr *result.InvalidTransitionError
	assert.True(t, errors.As(err, &terr))
}

func TestService_Send(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	draft, err := f.svc.Create(ctx, f.teacher, newResult("st0", "Zara Musa"))
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.admin, draft.ID)
	var terr *result.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, result.StatusDraft, terr.From)
	assert.Equal(t, result.EventSend, terr.Event)

	r := f.approved(t, newResult("st1", "Ada Obi"))

	_, err = f.svc.Send(ctx, f.teacher, r.ID)
	assert.Equal(t, core.ErrAccessDenied, err)

	sent, err := f.svc.Send(ctx, f.admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusSent, sent.Status)
	require.NotNil(t, sent.SentToParentAt)

	require.Len(t, f.notifier.sent, 1)
	n := f.notifier.sent[0]
	assert.Equal(t, "st1@parents.test", n.Recipient.Address)
	assert.Equal(t, "Mrs Ada Obi", n.Recipient.Name)
	require.Len(t, n.Attachments, 1)
	assert.Equal(t, "application/pdf", n.Attachments[0].ContentType)

	_, err = f.svc.Send(ctx, f.admin, r.ID)
	assert.True(t, errors.As(err, &terr), "a sent result cannot be sent again")
	assert.Len(t, f.notifier.sent, 1)
}

func TestService_SendFailureKeepsApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	noParent := newResult("st1", "Ada Obi")
	noParent.Student.ParentEmail = ""
	r1 := f.approved(t, noParent)
	_, err := f.svc.Send(ctx, f.admin, r1.ID)
	assert.Error(t, err)

	f.renderer.failFor["Bayo Ade"] = true
	r2 := f.approved(t, newResult("st2", "Bayo Ade"))
	_, err = f.svc.Send(ctx, f.admin, r2.ID)
	assert.Error(t, err)

	for _, id := range []string{r1.ID, r2.ID} {
		got, err := f.svc.Get(ctx, f.admin, id)
		require.NoError(t, err)
		assert.Equal(t, result.StatusApproved, got.Status)
		assert.Nil(t, got.SentToParentAt)
	}
	assert.Empty(t, f.notifier.sent)
}

func TestService_SendBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.renderer.failFor["Ada Obi"] = true
	r1 := f.approved(t, newResult("st1", "Ada Obi"))
	r2 := f.approved(t, newResult("st2", "Bayo Ade"))
	r3 := f.submitted(t, newResult("st3", "Chi Eze"))

	_, err := f.svc.SendBatch(ctx, f.teacher, []string{r1.ID})
	assert.Equal(t, core.ErrAccessDenied, err)

	report, err := f.svc.SendBatch(ctx, f.admin, []string{r1.ID, r2.ID, r3.ID, r2.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, report.Items, 5)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 4, report.Failed)

	wantStatuses := []string{result.BatchFailed, result.BatchSent, result.BatchFailed, result.BatchFailed, result.BatchFailed}
	wantIDs := []string{r1.ID, r2.ID, r3.ID, r2.ID, "missing"}
	for i, item := range report.Items {
		assert.Equal(t, wantIDs[i], item.ResultID)
		assert.Equal(t, wantStatuses[i], item.Status, item.Reason)
		if item.Status == result.BatchFailed {
			assert.NotEmpty(t, item.Reason)
		}
	}
	assert.Equal(t, "result listed more than once", report.Items[3].Reason)

	got, err := f.svc.Get(ctx, f.admin, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusSent, got.Status)
	got, err = f.svc.Get(ctx, f.admin, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, result.StatusApproved, got.Status)

	empty, err := f.svc.SendBatch(ctx, f.admin, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestService_RankClass(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// averages: st1 70, st2 85, st3 85, st4 50
	r1 := f.submitted(t, newResult("st1", "Ada Obi", map[string]float64{"ca1": 10, "ca2": 10, "exam": 50}))
	r2 := f.approved(t, newResult("st2", "Bayo Ade", map[string]float64{"ca1": 15, "ca2": 15, "exam": 55}))
	r3 := f.submitted(t, newResult("st3", "Chi Eze", map[string]float64{"ca1": 20, "ca2": 10, "exam": 55}))
	r4 := f.approved(t, newResult("st4", "Dayo Ola", map[string]float64{"ca1": 10, "ca2": 10, "exam": 30}))
	_, err := f.svc.Send(ctx, f.admin, r4.ID)
	require.NoError(t, err)
	// drafts are not ranked
	draft, err := f.svc.Create(ctx, f.teacher, newResult("st5", "Efe Uzo", map[string]float64{"ca1": 20, "ca2": 20, "exam": 60}))
	require.NoError(t, err)

	_, err = f.svc.RankClass(ctx, f.teacher, result.RankRequest{ClassID: "jss1a", Term: r1.Term, Session: r1.Session})
	assert.Equal(t, core.ErrAccessDenied, err)

	ranked, err := f.svc.RankClass(ctx, f.admin, result.RankRequest{ClassID: "jss1a", Term: r1.Term, Session: r1.Session})
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	positions := make(map[string]int)
	for _, r := range ranked {
		positions[r.ID] = r.Position
	}
	assert.Equal(t, 1, positions[r2.ID])
	assert.Equal(t, 1, positions[r3.ID])
	assert.Equal(t, 3, positions[r1.ID])
	assert.Equal(t, 0, positions[r4.ID], "sent results keep their printed position")
	assert.Equal(t, r4.ID, ranked[3].ID)

	got, err := f.svc.Get(ctx, f.admin, draft.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Position)
}
