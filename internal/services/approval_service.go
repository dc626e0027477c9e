package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"dealcore/internal/clock"
	"dealcore/internal/domain"
	"dealcore/internal/log"
	"dealcore/internal/repos"
	"dealcore/internal/validate"
)

// notifyTimeout bounds one background notification run.
const notifyTimeout = 30 * time.Second

// ApprovalService moves PENDING deals to APPROVED or REJECTED and tells the
// deal's owner, plus its creator when someone else created it. Notification
// runs in the background and never undoes the decision.
type ApprovalService struct {
	Store    *repos.Store
	Deals    *repos.DealRepo
	Profiles ProfileService
	Notifier Notifier
	Sync     *IndexSync
	Clock    clock.Clock

	wg sync.WaitGroup
}

func NewApprovalService(store *repos.Store, profiles ProfileService, n Notifier, idx *IndexSync, c clock.Clock) *ApprovalService {
	return &ApprovalService{
		Store:    store,
		Deals:    repos.NewDealRepo(store.DB),
		Profiles: profiles,
		Notifier: n,
		Sync:     idx,
		Clock:    c,
	}
}

func (s *ApprovalService) Decide(ctx context.Context, caller Caller, id string, status domain.ApprovalStatus, comment string) (domain.Deal, error) {
	if !caller.Admin {
		return domain.Deal{}, domain.ErrUnsupportedUserType.With("only admins decide deals")
	}
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return domain.Deal{}, domain.ErrValidation.With("status must be APPROVED or REJECTED")
	}
	comment, ok := validate.Text(comment, 500)
	if !ok {
		return domain.Deal{}, domain.ErrValidation.With("comment")
	}
	d, err := s.Deals.Get(ctx, id)
	if repos.IsNotFound(err) {
		return d, domain.ErrInvalidDeal.With("deal %s", id)
	}
	if err != nil {
		return d, fmt.Errorf("load deal %s: %w", id, err)
	}
	if d.ApprovalStatus != domain.StatusPending {
		return d, domain.ErrUnsupportedApproval.With("deal %s is %s", id, d.ApprovalStatus)
	}

	now := domain.NewTime(s.Clock.Now())
	err = s.Store.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := repos.NewDealRepo(tx).SetApproval(ctx, id, status, comment, now); err != nil {
			return err
		}
		d.ApprovalStatus, d.Comment, d.UpdatedAt = status, comment, now
		return s.Sync.DealApproved(ctx, tx, d)
	})
	if err != nil {
		return domain.Deal{}, fmt.Errorf("decide deal %s: %w", id, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notify(nctx, caller.AuthToken, d)
	}()
	return d, nil
}

// Wait blocks until every in-flight notification has finished.
func (s *ApprovalService) Wait() { s.wg.Wait() }

func (s *ApprovalService) notify(ctx context.Context, token string, d domain.Deal) {
	recipients := []string{d.OwnerID}
	if d.CreatedBy != "" && d.CreatedBy != d.OwnerID {
		recipients = append(recipients, d.CreatedBy)
	}
	for _, id := range recipients {
		s.notifyUser(ctx, token, id, d)
	}
}

func (s *ApprovalService) notifyUser(ctx context.Context, token, userID string, d domain.Deal) {
	started := time.Now()
	fields := map[string]any{"deal_id": d.ID, "recipient": userID}
	u, err := s.Profiles.UserByID(ctx, token, userID)
	if err != nil {
		log.Job("deal.notify", started, err, fields)
		return
	}
	msg := approvalMessage(u.Locale, d)
	sent := []string{}
	if u.Email != "" {
		if err := s.Notifier.SendMail(ctx, u.Email, msg.subject, msg.body); err != nil {
			log.Job("deal.notify.mail", started, err, fields)
		} else {
			sent = append(sent, "mail")
		}
	}
	if u.MobileNo != "" {
		if err := s.Notifier.SendSMS(ctx, u.MobileNo, msg.sms); err != nil {
			log.Job("deal.notify.sms", started, err, fields)
		} else {
			sent = append(sent, "sms")
		}
	}
	fields["status"], fields["channels"] = d.ApprovalStatus, sent
	log.Job("deal.notify", started, nil, fields)
}

type message struct {
	subject, body, sms string
}

// approvalTemplates are keyed by locale, then decision. Verbs are %[1]s deal
// title, %[2]s deal code, %[3]s reviewer comment.
var approvalTemplates = map[string]map[domain.ApprovalStatus]message{
	"en": {
		domain.StatusApproved: {
			subject: "Your deal %[2]s is live",
			body:    "Good news! Your deal \"%[1]s\" (%[2]s) was approved and is now visible to customers.\n\n%[3]s",
			sms:     "Deal %[2]s approved and live.",
		},
		domain.StatusRejected: {
			subject: "Your deal %[2]s was not approved",
			body:    "Your deal \"%[1]s\" (%[2]s) was rejected.\n\nReviewer comment: %[3]s",
			sms:     "Deal %[2]s rejected. Check your email for details.",
		},
	},
	"bn": {
		domain.StatusApproved: {
			subject: "আপনার ডিল %[2]s চালু হয়েছে",
			body:    "আপনার ডিল \"%[1]s\" (%[2]s) অনুমোদিত হয়েছে এবং গ্রাহকদের কাছে দৃশ্যমান।\n\n%[3]s",
			sms:     "ডিল %[2]s অনুমোদিত হয়েছে।",
		},
		domain.StatusRejected: {
			subject: "আপনার ডিল %[2]s অনুমোদিত হয়নি",
			body:    "আপনার ডিল \"%[1]s\" (%[2]s) বাতিল করা হয়েছে।\n\nমন্তব্য: %[3]s",
			sms:     "ডিল %[2]s বাতিল হয়েছে। বিস্তারিত ইমেইলে দেখুন।",
		},
	},
}

func approvalMessage(locale string, d domain.Deal) message {
	byStatus, ok := approvalTemplates[locale]
	if !ok {
		byStatus = approvalTemplates["en"]
	}
	t := byStatus[d.ApprovalStatus]
	return message{
		subject: fmt.Sprintf(t.subject, d.Title, d.DealCode, d.Comment),
		body:    fmt.Sprintf(t.body, d.Title, d.DealCode, d.Comment),
		sms:     fmt.Sprintf(t.sms, d.Title, d.DealCode, d.Comment),
	}
}
