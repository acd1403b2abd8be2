// Package memstore is an in-memory implementation of the auth, endpoint
// and item ports. It backs local development (USE_MEMSTORE=true) and the
// integration tests, so the application can run without the upstream
// MakeAPI service.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/port"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id           string
	email        string
	passwordHash []byte
}

// Store holds everything behind one mutex. Contention is irrelevant at
// dev-tool scale; simplicity wins.
type Store struct {
	mu        sync.Mutex
	users     []user
	sessions  map[string]string // token -> user id
	endpoints []domain.Endpoint
	items     []domain.EndpointItem
}

var _ port.AuthGateway = (*Store)(nil)
var _ port.EndpointStore = (*Store)(nil)
var _ port.ItemStore = (*Store)(nil)

// New creates a Store seeded with the demo catalog: a Produtos endpoint
// with two items, a Usuarios endpoint with one, and a login that works
// with demo@makeapi.dev / senha123.
func New() *Store {
	hash, _ := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.DefaultCost)
	s := &Store{
		users: []user{
			{id: "user-1", email: "demo@makeapi.dev", passwordHash: hash},
		},
		sessions: make(map[string]string),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.endpoints = []domain.Endpoint{
		{
			ID:    "1",
			Title: "Produtos",
			Campos: []domain.EndpointField{
				{Title: "nome", Tipo: domain.FieldString},
				{Title: "descricao", Tipo: domain.FieldString, Mult: true},
				{Title: "preco", Tipo: domain.FieldNumber},
				{Title: "imagem", Tipo: domain.FieldImage},
			},
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		},
		{
			ID:    "2",
			Title: "Usuarios",
			Campos: []domain.EndpointField{
				{Title: "nome", Tipo: domain.FieldString},
				{Title: "email", Tipo: domain.FieldString},
				{Title: "bio", Tipo: domain.FieldString, Mult: true},
			},
			CreatedAt: "2024-01-02T00:00:00Z",
			UpdatedAt: "2024-01-02T00:00:00Z",
		},
	}
	s.items = []domain.EndpointItem{
		{
			ID:         "1",
			EndpointID: "1",
			Data: map[string]any{
				"nome":      "iPhone 15",
				"descricao": "Smartphone Apple com tecnologia avançada e design premium",
				"preco":     float64(4999),
				"imagem":    "/iphone-15-hands.png",
			},
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		},
		{
			ID:         "2",
			EndpointID: "1",
			Data: map[string]any{
				"nome":      "MacBook Pro",
				"descricao": "Notebook profissional para desenvolvedores e criadores de conteúdo",
				"preco":     float64(12999),
				"imagem":    "/silver-macbook-pro-desk.png",
			},
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		},
		{
			ID:         "3",
			EndpointID: "2",
			Data: map[string]any{
				"nome":  "João Silva",
				"email": "joao@example.com",
				"bio":   "Desenvolvedor Full Stack com 5 anos de experiência em React e Node.js",
			},
			CreatedAt: "2024-01-02T00:00:00Z",
			UpdatedAt: "2024-01-02T00:00:00Z",
		},
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Login verifies the credentials against the seeded users and mints an
// opaque session token.
func (s *Store) Login(_ context.Context, email, password string) (*domain.TokenGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
			break
		}
		token := uuid.NewString()
		s.sessions[token] = u.id
		return &domain.TokenGrant{AccessToken: token, ID: u.id}, nil
	}
	return nil, &domain.ErrUnauthenticated{Message: "Credenciais inválidas"}
}

// Me resolves a session token back to its user.
func (s *Store) Me(_ context.Context, token string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.sessions[token]
	if !ok {
		return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	for _, u := range s.users {
		if u.id == id {
			return &domain.Identity{ID: u.id, Email: u.email}, nil
		}
	}
	return nil, &domain.ErrUnauthenticated{Message: "Não autenticado"}
}

func (s *Store) ListEndpoints(_ context.Context) ([]domain.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Endpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out, nil
}

func (s *Store) GetEndpoint(_ context.Context, id string) (*domain.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ep := range s.endpoints {
		if ep.ID == id {
			found := ep
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "endpoint", ID: id}
}

func (s *Store) CreateEndpoint(ctx context.Context, token, title string, campos []domain.EndpointField) (*domain.Endpoint, error) {
	if err := s.requireSession(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ep := domain.Endpoint{
		ID:        uuid.NewString(),
		Title:     title,
		Campos:    campos,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	s.endpoints = append(s.endpoints, ep)
	return &ep, nil
}

func (s *Store) UpdateEndpoint(ctx context.Context, token, id string, patch map[string]any) (*domain.Endpoint, error) {
	if err := s.requireSession(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.endpoints {
		if s.endpoints[i].ID != id {
			continue
		}
		if title, ok := patch["title"].(string); ok {
			s.endpoints[i].Title = title
		}
		if campos, ok := patch["campos"].([]domain.EndpointField); ok {
			s.endpoints[i].Campos = campos
		}
		s.endpoints[i].UpdatedAt = now()
		found := s.endpoints[i]
		return &found, nil
	}
	return nil, &domain.ErrNotFound{Resource: "endpoint", ID: id}
}

// DeleteEndpoint removes the endpoint and cascades to its items, so no
// orphan records survive in the fake.
func (s *Store) DeleteEndpoint(ctx context.Context, token, id string) error {
	if err := s.requireSession(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.endpoints {
		if s.endpoints[i].ID != id {
			continue
		}
		s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)

		kept := s.items[:0]
		for _, item := range s.items {
			if item.EndpointID != id {
				kept = append(kept, item)
			}
		}
		s.items = kept
		return nil
	}
	return &domain.ErrNotFound{Resource: "endpoint", ID: id}
}

func (s *Store) QueryItems(_ context.Context, _, endpointID string) ([]domain.EndpointItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.EndpointItem, 0)
	for _, item := range s.items {
		if item.EndpointID == endpointID {
			out = append(out, item)
		}
		if len(out) == port.QueryLimit {
			break
		}
	}
	return out, nil
}

func (s *Store) GetItem(_ context.Context, itemID string) (*domain.EndpointItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == itemID {
			found := item
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "item", ID: itemID}
}

func (s *Store) CreateItem(ctx context.Context, token, endpointID string, values map[string]any) (*domain.EndpointItem, error) {
	if err := s.requireSession(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := domain.EndpointItem{
		ID:         uuid.NewString(),
		EndpointID: endpointID,
		Data:       values,
		CreatedAt:  now(),
		UpdatedAt:  now(),
	}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *Store) PatchItem(ctx context.Context, token, itemID string, values map[string]any) (*domain.EndpointItem, error) {
	if err := s.requireSession(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != itemID {
			continue
		}
		s.items[i].Data = values
		s.items[i].UpdatedAt = now()
		found := s.items[i]
		return &found, nil
	}
	return nil, &domain.ErrNotFound{Resource: "item", ID: itemID}
}

func (s *Store) DeleteItem(ctx context.Context, token, itemID string) error {
	if err := s.requireSession(token); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "item", ID: itemID}
}

func (s *Store) requireSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return &domain.ErrUnauthenticated{Message: "Não autenticado"}
	}
	return nil
}
