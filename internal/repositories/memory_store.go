package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchshop/internal/models"
)

// MemoryStore is an in-memory implementation of Store.
// Atomic holds the store lock for the whole unit of work, so units of work are serialized,
// and restores a snapshot taken at the start if fn fails.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

type memoryData struct {
	watches       map[string]models.Watch
	components    map[string]models.Component
	customWatches map[string]models.CustomWatch
	orders        map[string]models.Order
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			watches:       make(map[string]models.Watch),
			components:    make(map[string]models.Component),
			customWatches: make(map[string]models.CustomWatch),
			orders:        make(map[string]models.Order),
		},
	}
}

// Repos returns repositories that lock the store on every call.
func (s *MemoryStore) Repos(ctx context.Context) Repositories {
	return s.repositories(false)
}

// Atomic runs fn with exclusive access to the store.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(repos Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repositories(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) repositories(inTx bool) Repositories {
	base := memoryRepo{store: s, inTx: inTx}
	return Repositories{
		Watches:       &memoryWatches{base},
		Components:    &memoryComponents{base},
		CustomWatches: &memoryCustomWatches{base},
		Orders:        &memoryOrders{base},
		Inventory:     &memoryInventory{base},
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		watches:       make(map[string]models.Watch, len(d.watches)),
		components:    make(map[string]models.Component, len(d.components)),
		customWatches: make(map[string]models.CustomWatch, len(d.customWatches)),
		orders:        make(map[string]models.Order, len(d.orders)),
	}
	for id, w := range d.watches {
		c.watches[id] = w
	}
	for id, comp := range d.components {
		c.components[id] = comp
	}
	for id, cw := range d.customWatches {
		cw.Components = append([]models.CustomWatchComponent(nil), cw.Components...)
		c.customWatches[id] = cw
	}
	for id, o := range d.orders {
		o.Items = append([]models.OrderItem(nil), o.Items...)
		c.orders[id] = o
	}
	return c
}

type memoryRepo struct {
	store *MemoryStore
	inTx  bool
}

// guard locks the store unless the caller already runs inside Atomic.
func (r memoryRepo) guard() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r memoryRepo) data() *memoryData {
	return r.store.data
}

// customWatch returns a stored custom watch with its components attached.
func (r memoryRepo) customWatch(id string) (models.CustomWatch, bool) {
	cw, ok := r.data().customWatches[id]
	if !ok {
		return cw, false
	}
	links := make([]models.CustomWatchComponent, len(cw.Components))
	for i, link := range cw.Components {
		if comp, ok := r.data().components[link.ComponentID]; ok {
			link.Component = &comp
		}
		links[i] = link
	}
	cw.Components = links
	return cw, true
}

// order returns a stored order with the products of its items attached.
func (r memoryRepo) order(id string) (models.Order, bool) {
	o, ok := r.data().orders[id]
	if !ok {
		return o, false
	}
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.WatchID != nil {
			if w, ok := r.data().watches[*item.WatchID]; ok {
				item.Watch = &w
			}
		}
		if item.CustomWatchID != nil {
			if cw, ok := r.customWatch(*item.CustomWatchID); ok {
				item.CustomWatch = &cw
			}
		}
		items[i] = item
	}
	o.Items = items
	return o, true
}

func (r memoryRepo) stockOf(ref models.ProductRef) (int, error) {
	switch ref.Kind {
	case models.KindWatch:
		w, ok := r.data().watches[ref.ID]
		if !ok {
			return 0, fmt.Errorf("watch with ID %s: %w", ref.ID, ErrNotFound)
		}
		return w.Stock, nil
	case models.KindComponent:
		c, ok := r.data().components[ref.ID]
		if !ok {
			return 0, fmt.Errorf("component with ID %s: %w", ref.ID, ErrNotFound)
		}
		return c.Stock, nil
	}
	return 0, fmt.Errorf("%s has no stock counter", ref.Kind)
}

func (r memoryRepo) setStock(ref models.ProductRef, stock int) {
	switch ref.Kind {
	case models.KindWatch:
		w := r.data().watches[ref.ID]
		w.Stock = stock
		r.data().watches[ref.ID] = w
	case models.KindComponent:
		c := r.data().components[ref.ID]
		c.Stock = stock
		r.data().components[ref.ID] = c
	}
}

type memoryWatches struct{ memoryRepo }

// checkReference rejects a reference already used by another watch.
func (r *memoryWatches) checkReference(watch *models.Watch) error {
	for id, existing := range r.data().watches {
		if id != watch.ID && existing.Reference == watch.Reference {
			return fmt.Errorf("reference %s: %w", watch.Reference, ErrDuplicate)
		}
	}
	return nil
}

// GetAll returns all watches ordered by name.
func (r *memoryWatches) GetAll() ([]models.Watch, error) {
	defer r.guard()()

	watches := make([]models.Watch, 0, len(r.data().watches))
	for _, w := range r.data().watches {
		watches = append(watches, w)
	}
	sort.Slice(watches, func(i, j int) bool { return watches[i].Name < watches[j].Name })
	return watches, nil
}

// GetByID returns a watch by its ID.
func (r *memoryWatches) GetByID(id string) (*models.Watch, error) {
	defer r.guard()()

	w, ok := r.data().watches[id]
	if !ok {
		return nil, fmt.Errorf("watch with ID %s: %w", id, ErrNotFound)
	}
	return &w, nil
}

// Create adds a new watch.
func (r *memoryWatches) Create(watch *models.Watch) error {
	defer r.guard()()

	if watch.ID == "" {
		watch.ID = uuid.New().String()
	}
	if err := r.checkReference(watch); err != nil {
		return err
	}
	now := time.Now()
	watch.CreatedAt, watch.UpdatedAt = now, now
	r.data().watches[watch.ID] = *watch
	return nil
}

// Update modifies an existing watch, keeping its stored stock.
func (r *memoryWatches) Update(watch *models.Watch) error {
	defer r.guard()()

	existing, ok := r.data().watches[watch.ID]
	if !ok {
		return fmt.Errorf("watch with ID %s: %w", watch.ID, ErrNotFound)
	}
	if err := r.checkReference(watch); err != nil {
		return err
	}
	watch.Stock = existing.Stock
	watch.CreatedAt = existing.CreatedAt
	watch.UpdatedAt = time.Now()
	r.data().watches[watch.ID] = *watch
	return nil
}

// Delete removes a watch by its ID.
func (r *memoryWatches) Delete(id string) error {
	defer r.guard()()

	if _, ok := r.data().watches[id]; !ok {
		return fmt.Errorf("watch with ID %s: %w", id, ErrNotFound)
	}
	delete(r.data().watches, id)
	return nil
}

type memoryComponents struct{ memoryRepo }

// GetAll returns all components ordered by type, then name.
func (r *memoryComponents) GetAll() ([]models.Component, error) {
	defer r.guard()()

	components := make([]models.Component, 0, len(r.data().components))
	for _, c := range r.data().components {
		components = append(components, c)
	}
	sort.Slice(components, func(i, j int) bool {
		if components[i].Type != components[j].Type {
			return components[i].Type < components[j].Type
		}
		return components[i].Name < components[j].Name
	})
	return components, nil
}

// GetByID returns a component by its ID.
func (r *memoryComponents) GetByID(id string) (*models.Component, error) {
	defer r.guard()()

	c, ok := r.data().components[id]
	if !ok {
		return nil, fmt.Errorf("component with ID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

// GetByIDs returns the existing components among ids, in the order of ids.
func (r *memoryComponents) GetByIDs(ids []string) ([]models.Component, error) {
	defer r.guard()()

	components := make([]models.Component, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.data().components[id]; ok {
			components = append(components, c)
		}
	}
	return components, nil
}

// Create adds a new component.
func (r *memoryComponents) Create(component *models.Component) error {
	defer r.guard()()

	if component.ID == "" {
		component.ID = uuid.New().String()
	}
	now := time.Now()
	component.CreatedAt, component.UpdatedAt = now, now
	r.data().components[component.ID] = *component
	return nil
}

// Update modifies an existing component, keeping its stored stock.
func (r *memoryComponents) Update(component *models.Component) error {
	defer r.guard()()

	existing, ok := r.data().components[component.ID]
	if !ok {
		return fmt.Errorf("component with ID %s: %w", component.ID, ErrNotFound)
	}
	component.Stock = existing.Stock
	component.CreatedAt = existing.CreatedAt
	component.UpdatedAt = time.Now()
	r.data().components[component.ID] = *component
	return nil
}

// Delete removes a component by its ID.
func (r *memoryComponents) Delete(id string) error {
	defer r.guard()()

	if _, ok := r.data().components[id]; !ok {
		return fmt.Errorf("component with ID %s: %w", id, ErrNotFound)
	}
	delete(r.data().components, id)
	return nil
}

type memoryCustomWatches struct{ memoryRepo }

// Create adds a custom watch and its component links.
func (r *memoryCustomWatches) Create(customWatch *models.CustomWatch) error {
	defer r.guard()()

	if customWatch.ID == "" {
		customWatch.ID = uuid.New().String()
	}
	customWatch.CreatedAt = time.Now()
	stored := *customWatch
	stored.Components = make([]models.CustomWatchComponent, len(customWatch.Components))
	for i := range customWatch.Components {
		link := &customWatch.Components[i]
		if link.ID == "" {
			link.ID = uuid.New().String()
		}
		link.CustomWatchID = customWatch.ID
		flat := *link
		flat.Component = nil
		stored.Components[i] = flat
	}
	r.data().customWatches[customWatch.ID] = stored
	return nil
}

// GetByID returns a custom watch with its components.
func (r *memoryCustomWatches) GetByID(id string) (*models.CustomWatch, error) {
	defer r.guard()()

	cw, ok := r.customWatch(id)
	if !ok {
		return nil, fmt.Errorf("custom watch with ID %s: %w", id, ErrNotFound)
	}
	return &cw, nil
}

// GetByIDForOwner returns a custom watch only if userID owns it.
func (r *memoryCustomWatches) GetByIDForOwner(id, userID string) (*models.CustomWatch, error) {
	defer r.guard()()

	cw, ok := r.customWatch(id)
	if !ok || cw.UserID != userID {
		return nil, fmt.Errorf("custom watch with ID %s: %w", id, ErrNotFound)
	}
	return &cw, nil
}

// ListByOwner returns the custom watches owned by userID, newest first.
func (r *memoryCustomWatches) ListByOwner(userID string) ([]models.CustomWatch, error) {
	defer r.guard()()

	var customWatches []models.CustomWatch
	for id, stored := range r.data().customWatches {
		if stored.UserID != userID {
			continue
		}
		cw, _ := r.customWatch(id)
		customWatches = append(customWatches, cw)
	}
	sort.Slice(customWatches, func(i, j int) bool {
		return customWatches[i].CreatedAt.After(customWatches[j].CreatedAt)
	})
	return customWatches, nil
}

type memoryOrders struct{ memoryRepo }

func (r *memoryOrders) list(keep func(models.Order) bool) []models.Order {
	orders := make([]models.Order, 0)
	for id, stored := range r.data().orders {
		if !keep(stored) {
			continue
		}
		o, _ := r.order(id)
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

// GetAll returns all orders, newest first.
func (r *memoryOrders) GetAll() ([]models.Order, error) {
	defer r.guard()()

	return r.list(func(models.Order) bool { return true }), nil
}

// GetByID returns an order by its ID.
func (r *memoryOrders) GetByID(id string) (*models.Order, error) {
	defer r.guard()()

	o, ok := r.order(id)
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &o, nil
}

// ListByUser returns the orders placed by userID, newest first.
func (r *memoryOrders) ListByUser(userID string) ([]models.Order, error) {
	defer r.guard()()

	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

// Create adds a new order and its items.
func (r *memoryOrders) Create(order *models.Order) error {
	defer r.guard()()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	stored := *order
	stored.Items = make([]models.OrderItem, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.OrderID = order.ID
		flat := *item
		flat.Watch, flat.CustomWatch = nil, nil
		stored.Items[i] = flat
	}
	r.data().orders[order.ID] = stored
	return nil
}

// UpdateStatus updates the status of an order.
func (r *memoryOrders) UpdateStatus(id string, status models.OrderStatus) error {
	defer r.guard()()

	o, ok := r.data().orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.data().orders[id] = o
	return nil
}

type memoryInventory struct{ memoryRepo }

// DecrementStock subtracts quantity if enough stock remains.
func (r *memoryInventory) DecrementStock(ref models.ProductRef, quantity int) error {
	defer r.guard()()

	stock, err := r.stockOf(ref)
	if err != nil {
		return err
	}
	if stock < quantity {
		return fmt.Errorf("%s with ID %s: %w", ref.Kind, ref.ID, ErrInsufficientStock)
	}
	r.setStock(ref, stock-quantity)
	return nil
}

// IncrementStock adds quantity to the stock counter.
func (r *memoryInventory) IncrementStock(ref models.ProductRef, quantity int) error {
	defer r.guard()()

	stock, err := r.stockOf(ref)
	if err != nil {
		return err
	}
	r.setStock(ref, stock+quantity)
	return nil
}
