// Package clientstest provides in-memory stand-ins for the downstream
// services, for tests that exercise the real service layer.
package clientstest

import (
	"context"
	"sync"

	"dealcore/internal/clients"
	"dealcore/internal/domain"
)

// Profiles serves merchant, bank and user profiles from maps.
type Profiles struct {
	mu        sync.Mutex
	Merchants map[string]domain.Profile
	Banks     map[string]domain.Profile
	Users     map[string]domain.User
	Counters  map[string]int
	BulkCalls int
}

func NewProfiles() *Profiles {
	return &Profiles{
		Merchants: map[string]domain.Profile{},
		Banks:     map[string]domain.Profile{},
		Users:     map[string]domain.User{},
	}
}

// AddMerchant registers an approved, active merchant named name.
func (p *Profiles) AddMerchant(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Merchants[id] = domain.Profile{MerchantID: id, Name: name, ApprovalStatus: "APPROVED", Active: true, ProfileType: "MERCHANT"}
}

func (p *Profiles) AddBank(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Banks[id] = domain.Profile{MerchantID: id, Name: name, ApprovalStatus: "APPROVED", Active: true, ProfileType: "BANK"}
}

func (p *Profiles) AddUser(u domain.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Users[u.ID] = u
}

// Rename changes a merchant or bank name as the profile service would.
func (p *Profiles) Rename(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.Merchants[id]; ok {
		m.Name = name
		p.Merchants[id] = m
	}
	if b, ok := p.Banks[id]; ok {
		b.Name = name
		p.Banks[id] = b
	}
}

func (p *Profiles) MerchantByID(_ context.Context, _, id string) (domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.Merchants[id]
	if !ok {
		return m, domain.ErrInvalidUser.With("merchant %s", id)
	}
	return m, nil
}

func (p *Profiles) BankByID(_ context.Context, _, id string) (domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.Banks[id]
	if !ok {
		return b, domain.ErrInvalidBank.With("bank %s", id)
	}
	return b, nil
}

func (p *Profiles) BulkMerchantInfo(_ context.Context, ids []string, kind domain.OwnerKind) (map[string]domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.BulkCalls++
	src := p.Merchants
	if kind == domain.OwnerBank {
		src = p.Banks
	}
	out := map[string]domain.Profile{}
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (p *Profiles) UserByID(_ context.Context, _, id string) (domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.Users[id]
	if !ok {
		return u, domain.ErrInvalidUser.With("user %s", id)
	}
	return u, nil
}

func (p *Profiles) BulkUserInfo(_ context.Context, ids []string) (map[string]domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]domain.User{}
	for _, id := range ids {
		if u, ok := p.Users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (p *Profiles) TodaySummary(_ context.Context, userID, userType string) (domain.TodaySummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.TodaySummary{UserID: userID, UserType: userType, Counters: p.Counters}, nil
}

// Message is one notification the Notifier accepted.
type Message struct {
	Channel string
	To      string
	Subject string
	Body    string
}

type Notifier struct {
	mu   sync.Mutex
	sent []Message
}

func (n *Notifier) SendMail(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Message{Channel: "mail", To: to, Subject: subject, Body: body})
	return nil
}

func (n *Notifier) SendSMS(_ context.Context, mobileNo, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Message{Channel: "sms", To: mobileNo, Body: message})
	return nil
}

func (n *Notifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.sent...)
}

// Analytics answers every report with Rows and remembers the last request.
type Analytics struct {
	mu   sync.Mutex
	Rows []clients.ReportRow
	Last clients.ReportRequest
}

func (a *Analytics) RunReport(_ context.Context, req clients.ReportRequest) ([]clients.ReportRow, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Last = req
	return a.Rows, nil
}
