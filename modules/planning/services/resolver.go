package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/crewplan/modules/planning/domain/booking"
	"github.com/iota-uz/crewplan/modules/planning/domain/reference"
)

type Strategy string

const (
	StrategyAuto       Strategy = "auto"
	StrategyBulk       Strategy = "bulk"
	StrategyIndividual Strategy = "individual"
)

func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyAuto, StrategyBulk, StrategyIndividual:
		return Strategy(s), true
	case "":
		return StrategyAuto, true
	}
	return "", false
}

type ResolverOptions struct {
	Strategy Strategy
	// BulkThreshold is the needed-id count from which auto always fetches whole collections.
	BulkThreshold int
	Concurrency   int
	// PageSize is used to estimate the cost of a bulk fetch.
	PageSize int
	Logger   *logrus.Entry
}

func (o *ResolverOptions) setDefaults() {
	if o.Strategy == "" {
		o.Strategy = StrategyAuto
	}
	if o.BulkThreshold <= 0 {
		o.BulkThreshold = 20
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

// Resolution holds the lookup maps for one batch. It is complete before any booking
// is built from it.
type Resolution struct {
	Functions map[int]booking.FunctionInfo
	Projects  map[int]booking.ProjectInfo
	Failures  []Failure
}

// EntityResolver turns the references of a batch of assignments into lookup maps,
// fetching every distinct id once. Each id class is fetched either as a whole
// collection or id by id; both produce the same maps.
type EntityResolver struct {
	repo   booking.Repository
	opts   ResolverOptions
	logger *logrus.Entry

	mu    sync.Mutex
	sizes map[string]int
}

func NewEntityResolver(repo booking.Repository, opts ResolverOptions) *EntityResolver {
	opts.setDefaults()
	return &EntityResolver{
		repo:   repo,
		opts:   opts,
		logger: opts.Logger.WithField("component", "resolver"),
		sizes:  make(map[string]int),
	}
}

func (r *EntityResolver) Strategy() Strategy {
	return r.opts.Strategy
}

// choose picks bulk when the id set is large, or when the collection is known to be
// small enough that paging through it costs no more calls than fetching each id.
func (r *EntityResolver) choose(collection string, needed int) Strategy {
	if r.opts.Strategy != StrategyAuto {
		return r.opts.Strategy
	}
	if needed >= r.opts.BulkThreshold {
		return StrategyBulk
	}
	r.mu.Lock()
	size, known := r.sizes[collection]
	r.mu.Unlock()
	if known {
		// a full last page costs one more, empty, request
		pages := size/r.opts.PageSize + 1
		if pages <= needed {
			return StrategyBulk
		}
	}
	return StrategyIndividual
}

// ForgetSizes drops the learned collection sizes, e.g. after the cache was cleared.
func (r *EntityResolver) ForgetSizes() {
	r.mu.Lock()
	r.sizes = make(map[string]int)
	r.mu.Unlock()
}

func (r *EntityResolver) rememberSize(collection string, size int) {
	r.mu.Lock()
	r.sizes[collection] = size
	r.mu.Unlock()
}

type source[T any] struct {
	collection string
	all        func(ctx context.Context) ([]T, error)
	one        func(ctx context.Context, id int) (T, error)
	id         func(T) int
}

func fetchSet[T any](ctx context.Context, r *EntityResolver, src source[T], ids *reference.IDSet, diag *Diagnostics) map[int]T {
	out := make(map[int]T, ids.Len())
	if ids.Len() == 0 {
		return out
	}

	strategy := r.choose(src.collection, ids.Len())
	log := r.logger.WithFields(logrus.Fields{
		"collection": src.collection,
		"needed":     ids.Len(),
		"strategy":   string(strategy),
	})

	if strategy == StrategyBulk {
		items, err := src.all(ctx)
		if err == nil {
			r.rememberSize(src.collection, len(items))
			for _, it := range items {
				if id := src.id(it); ids.Has(id) {
					out[id] = it
				}
			}
			for _, id := range ids.IDs() {
				if _, ok := out[id]; !ok {
					diag.Add(Failure{Collection: src.collection, ID: id, Error: "not found"})
				}
			}
			log.WithField("resolved", len(out)).Debug("bulk resolution")
			return out
		}
		log.WithError(err).Warn("bulk fetch failed, falling back to individual fetches")
		diag.Add(Failure{Collection: src.collection, Error: err.Error()})
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.opts.Concurrency)
	for _, id := range ids.IDs() {
		g.Go(func() error {
			it, err := src.one(ctx, id)
			if err != nil {
				log.WithError(err).WithField("id", id).Debug("lookup failed")
				diag.Add(Failure{Collection: src.collection, ID: id, Error: err.Error()})
				return nil
			}
			mu.Lock()
			out[id] = it
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Resolve never fails: ids that cannot be resolved are missing from the maps and
// listed in Failures.
func (r *EntityResolver) Resolve(ctx context.Context, assignments []booking.Assignment) Resolution {
	diag := &Diagnostics{}

	functionIDs := reference.NewIDSet()
	for _, a := range assignments {
		functionIDs.Add(a.Function)
	}
	functions := fetchSet(ctx, r, source[booking.Function]{
		collection: reference.ProjectFunctions,
		all:        r.repo.AllFunctions,
		one:        r.repo.Function,
		id:         func(f booking.Function) int { return f.ID },
	}, functionIDs, diag)

	res := Resolution{
		Functions: make(map[int]booking.FunctionInfo, len(functions)),
		Projects:  make(map[int]booking.ProjectInfo),
	}
	projectIDs := reference.NewIDSet()
	for _, id := range functionIDs.IDs() {
		fn, ok := functions[id]
		if !ok {
			continue
		}
		res.Functions[id] = booking.NewFunctionInfo(fn)
		projectIDs.Add(fn.Project)
	}

	projects := r.resolveProjects(ctx, projectIDs, diag)
	for id, p := range projects {
		res.Projects[id] = p
	}

	res.Failures = diag.Failures()
	if len(res.Failures) > 0 {
		r.logger.WithFields(logrus.Fields{
			"assignments": len(assignments),
			"failures":    len(res.Failures),
		}).Info("resolved batch with failures")
	}
	return res
}

// ResolveProjects resolves projects and their contact names without going through
// functions.
func (r *EntityResolver) ResolveProjects(ctx context.Context, ids []int) (map[int]booking.ProjectInfo, []Failure) {
	set := reference.NewIDSet()
	for _, id := range ids {
		set.AddID(id)
	}
	diag := &Diagnostics{}
	out := r.resolveProjects(ctx, set, diag)
	return out, diag.Failures()
}

func (r *EntityResolver) resolveProjects(ctx context.Context, projectIDs *reference.IDSet, diag *Diagnostics) map[int]booking.ProjectInfo {
	projects := fetchSet(ctx, r, source[booking.Project]{
		collection: reference.Projects,
		all:        r.repo.AllProjects,
		one:        r.repo.Project,
		id:         func(p booking.Project) int { return p.ID },
	}, projectIDs, diag)

	contactIDs := reference.NewIDSet()
	crewIDs := reference.NewIDSet()
	for _, id := range projectIDs.IDs() {
		p, ok := projects[id]
		if !ok {
			continue
		}
		contactIDs.Add(p.Customer)
		contactIDs.Add(p.Location)
		crewIDs.Add(p.AccountManager)
	}

	var (
		contacts map[int]booking.Contact
		crew     map[int]booking.CrewMember
		g        errgroup.Group
	)
	g.Go(func() error {
		contacts = fetchSet(ctx, r, source[booking.Contact]{
			collection: reference.Contacts,
			all:        r.repo.AllContacts,
			one:        r.repo.Contact,
			id:         func(c booking.Contact) int { return c.ID },
		}, contactIDs, diag)
		return nil
	})
	g.Go(func() error {
		crew = fetchSet(ctx, r, source[booking.CrewMember]{
			collection: reference.Crew,
			all:        r.repo.AllCrew,
			one:        r.repo.CrewMember,
			id:         func(c booking.CrewMember) int { return c.ID },
		}, crewIDs, diag)
		return nil
	})
	_ = g.Wait()

	out := make(map[int]booking.ProjectInfo, len(projects))
	for id, p := range projects {
		info := booking.NewProjectInfo(p)
		info.CustomerName = contacts[info.CustomerID].Name
		info.LocationName = contacts[info.LocationID].Name
		info.AccountManagerName = crew[info.AccountManagerID].Name
		out[id] = info
	}
	return out
}
