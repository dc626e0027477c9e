package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"

	"dealcore/internal/domain"
	"dealcore/internal/repos"
)

// ReconcileResult summarises one profile reconciliation run.
type ReconcileResult struct {
	Scanned int         `json:"scanned"`
	Owners  int         `json:"owners"`
	Changed []string    `json:"changed"`
	Patched PatchResult `json:"patched"`
}

// ReconcileService pulls fresh merchant and bank profiles and pushes any drift
// into the cached owner fields of every index table.
type ReconcileService struct {
	Index    *repos.MerchantIndexRepo
	Profiles ProfileService
	Sync     *IndexSync
	PageSize int

	group singleflight.Group
}

func NewReconcileService(store *repos.Store, profiles ProfileService, idx *IndexSync, pageSize int) *ReconcileService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &ReconcileService{
		Index:    repos.NewMerchantIndexRepo(store.DB),
		Profiles: profiles,
		Sync:     idx,
		PageSize: pageSize,
	}
}

// Run is not re-entrant: a call that arrives while a run is in flight waits
// for it and gets the same result.
func (s *ReconcileService) Run(ctx context.Context) (ReconcileResult, error) {
	v, err, _ := s.group.Do("reconcile", func() (any, error) {
		return s.run(ctx)
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return v.(ReconcileResult), nil
}

type cachedOwner struct {
	kind    domain.OwnerKind
	display domain.OwnerDisplay
}

// run scans the whole merchant index before patching anything. All working
// state lives in this call.
func (s *ReconcileService) run(ctx context.Context) (ReconcileResult, error) {
	res := ReconcileResult{Changed: []string{}, Patched: PatchResult{}}
	cached := map[string]cachedOwner{}
	for offset := 0; ; offset += s.PageSize {
		rows, err := s.Index.Page(ctx, offset, s.PageSize)
		if err != nil {
			return res, fmt.Errorf("scan merchant index at %d: %w", offset, err)
		}
		for _, row := range rows {
			cached[row.OwnerID] = cachedOwner{kind: row.OwnerKind, display: row.OwnerDisplay}
		}
		res.Scanned += len(rows)
		if len(rows) < s.PageSize {
			break
		}
	}
	res.Owners = len(cached)

	byKind := map[domain.OwnerKind][]string{}
	for id, c := range cached {
		byKind[c.kind] = append(byKind[c.kind], id)
	}
	changed := map[string]domain.OwnerDisplay{}
	for _, kind := range []domain.OwnerKind{domain.OwnerMerchant, domain.OwnerBank} {
		ids := byKind[kind]
		sort.Strings(ids)
		for start := 0; start < len(ids); start += s.PageSize {
			end := min(start+s.PageSize, len(ids))
			fresh, err := s.Profiles.BulkMerchantInfo(ctx, ids[start:end], kind)
			if err != nil {
				return res, fmt.Errorf("bulk profile fetch: %w", err)
			}
			for _, id := range ids[start:end] {
				p, ok := fresh[id]
				if !ok {
					continue
				}
				if d := p.Display(); d != cached[id].display {
					changed[id] = d
				}
			}
		}
	}
	for id := range changed {
		res.Changed = append(res.Changed, id)
	}
	sort.Strings(res.Changed)
	if len(changed) == 0 {
		return res, nil
	}

	patched, err := s.Sync.PatchOwners(ctx, changed)
	res.Patched = patched
	if err != nil {
		return res, err
	}
	return res, nil
}
