package result

import (
	"context"
	"fmt"
	"net/mail"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/score"
)

var (
	errNoRecipient       = errors.New("no parent email on the result")
	errDuplicateBatchID  = errors.New("result listed more than once")
	notificationTemplate = "result_sent"
)

// ReviewOne approves or rejects a submitted result, after applying the admin's edits if any.
func (svc *Service) ReviewOne(ctx context.Context, p core.Principal, id string, rv Review) (Saved, error) {
	if err := p.RequireAdmin(); err != nil {
		return Saved{}, err
	}
	if err := rv.Validate(svc.validate); err != nil {
		return Saved{}, err
	}
	r, err := svc.get(ctx, p, id)
	if err != nil {
		return Saved{}, err
	}
	if err := r.Can(rv.Action); err != nil {
		return Saved{}, err
	}

	var adjs []score.Adjustment
	if rv.Edits != nil && !rv.Edits.IsEmpty() {
		tmplID, comps, err := svc.components(ctx, r)
		if err != nil {
			return Saved{}, err
		}
		if r, adjs, err = compute(r, *rv.Edits, comps); err != nil {
			return Saved{}, err
		}
		r.TemplateID = tmplID
	}
	if err := checkSubjects(r); err != nil {
		return Saved{}, err
	}

	if err := r.apply(rv.Action, p.UserID, NowFunc().UTC(), rv.Reason); err != nil {
		return Saved{}, err
	}
	r, err = svc.repo.UpdateResult(ctx, r)
	if err != nil {
		return Saved{}, errors.Wrap(err, "reviewing result")
	}
	svc.record(rv.Action)
	return Saved{Result: r, Adjustments: adjs}, nil
}

// Send renders an approved result and delivers it to the student's parent.
// The result is only marked as sent once the notification went through.
func (svc *Service) Send(ctx context.Context, p core.Principal, id string) (Result, error) {
	if err := p.RequireAdmin(); err != nil {
		return Result{}, err
	}
	return svc.send(ctx, p, id)
}

func (svc *Service) send(ctx context.Context, p core.Principal, id string) (Result, error) {
	r, err := svc.get(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if err := r.Can(EventSend); err != nil {
		return Result{}, err
	}
	if r.Student.ParentEmail == "" {
		return Result{}, errNoRecipient
	}

	sch, err := svc.schools.Get(ctx, r.SchoolID)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting school")
	}
	_, comps, err := svc.components(ctx, r)
	if err != nil {
		return Result{}, err
	}
	doc, err := svc.renderer.Render(ctx, r, sch, comps)
	if err != nil {
		return Result{}, errors.Wrap(err, "rendering result")
	}

	n := core.Notification{
		Recipient:    mail.Address{Name: r.Student.ParentName, Address: r.Student.ParentEmail},
		Subject:      fmt.Sprintf("%s %s result of %s", r.Term, r.Session, r.Student.Name),
		TemplateName: notificationTemplate,
		TemplateData: notificationData(r, sch.Name),
		Attachments:  []core.Document{doc},
	}
	nctx := ctx
	if svc.opts.NotificationTimeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(ctx, svc.opts.NotificationTimeout)
		defer cancel()
	}
	if d := svc.notifier.Send(nctx, n); !d.Success {
		return Result{}, errors.Errorf("notifying %s: %s", d.Recipient, d.Error)
	}

	if err := r.apply(EventSend, p.UserID, NowFunc().UTC(), ""); err != nil {
		return Result{}, err
	}
	r, err = svc.repo.UpdateResult(ctx, r)
	if err != nil {
		return Result{}, errors.Wrap(err, "marking result as sent")
	}
	svc.record(EventSend)
	return r, nil
}

// SendBatch sends every listed result independently, with bounded concurrency.
// A failing item never stops the others; the report keeps the order of ids.
func (svc *Service) SendBatch(ctx context.Context, p core.Principal, ids []string) (BatchReport, error) {
	if err := p.RequireAdmin(); err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Items: make([]BatchItem, len(ids))}
	seen := make(map[string]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(svc.opts.BatchConcurrency)
	for i, id := range ids {
		i, id := i, id
		report.Items[i] = BatchItem{ResultID: id, Status: BatchSent}
		if seen[id] {
			report.Items[i].Status = BatchFailed
			report.Items[i].Reason = errDuplicateBatchID.Error()
			continue
		}
		seen[id] = true

		g.Go(func() error {
			if _, err := svc.send(ctx, p, id); err != nil {
				report.Items[i].Status = BatchFailed
				report.Items[i].Reason = err.Error()
				svc.logger.Warn(fmt.Sprintf("sending result %s: %v", id, err), p)
			}
			return nil
		})
	}
	_ = g.Wait() // items never fail the group

	for _, item := range report.Items {
		if item.Status == BatchSent {
			report.Succeeded++
		} else {
			report.Failed++
		}
		if svc.metrics != nil {
			svc.metrics.BatchItem(item.Status)
		}
	}
	return report, nil
}

// RankClass assigns class positions, by average, to every submitted result of a class for a term.
// Sent results take part in the ranking but keep the position printed on their sheet.
func (svc *Service) RankClass(ctx context.Context, p core.Principal, rr RankRequest) ([]Result, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := rr.Validate(svc.validate); err != nil {
		return nil, err
	}

	results, err := svc.repo.QueryResults(ctx, QueryFilter{
		SchoolID: p.SchoolID,
		ClassID:  rr.ClassID,
		Term:     rr.Term,
		Session:  rr.Session,
		Statuses: []string{StatusSubmitted, StatusApproved, StatusRejected, StatusSent},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying class results")
	}

	entries := make([]score.Ranked, 0, len(results))
	for _, r := range results {
		entries = append(entries, score.Ranked{ID: r.ID, Average: r.Average})
	}
	positions := score.Rank(entries)

	now := NowFunc().UTC()
	ranked := make([]Result, 0, len(results))
	for _, r := range results {
		pos := positions[r.ID]
		if r.Status != StatusSent && r.Position != pos {
			r.Position = pos
			r.UpdatedAt = now
			if r, err = svc.repo.UpdateResult(ctx, r); err != nil {
				return nil, errors.Wrap(err, "updating result position")
			}
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return positions[ranked[i].ID] < positions[ranked[j].ID] })
	return ranked, nil
}

type resultNotification struct {
	SchoolName  string
	ParentName  string
	StudentName string
	ClassName   string
	Term        string
	Session     string
	Total       float64
	Average     float64
	Position    string
}

func notificationData(r Result, schoolName string) resultNotification {
	data := resultNotification{
		SchoolName:  schoolName,
		ParentName:  r.Student.ParentName,
		StudentName: r.Student.Name,
		ClassName:   r.Student.ClassName,
		Term:        r.Term,
		Session:     r.Session,
		Total:       r.Total,
		Average:     r.Average,
	}
	if data.ParentName == "" {
		data.ParentName = "Parent"
	}
	if r.Position > 0 {
		data.Position = score.Ordinal(r.Position)
	}
	return data
}
