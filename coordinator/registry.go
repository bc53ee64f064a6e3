package coordinator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/room4-2/voicepanel/config"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const activeClientsKey = "active_clients"

// ConnectRedis returns a client if Redis answers, nil otherwise
func ConnectRedis(cfg *config.Config) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis unavailable, continue without it
		log.Printf("⚠️ Redis unavailable at %s, tracking clients in memory only: %v", cfg.RedisURL, err)
		redisClient.Close()
		return nil
	}
	return redisClient
}

// Registry tracks connected panel clients
type Registry struct {
	clients map[string]*Client
	mu      sync.RWMutex
	redis   *redis.Client
	config  *config.Config
}

// NewRegistry creates a registry; redisClient may be nil
func NewRegistry(cfg *config.Config, redisClient *redis.Client) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		redis:   redisClient,
		config:  cfg,
	}
}

// Register wraps a new connection in a Client
func (r *Registry) Register(ctx context.Context, conn *websocket.Conn, processor Processor) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.clients) >= r.config.MaxClients {
		return nil, fmt.Errorf("maximum clients reached")
	}

	client := NewClient(uuid.New().String(), conn, processor)
	r.clients[client.ID] = client

	if r.redis != nil {
		key := "client:" + client.ID
		r.redis.HSet(ctx, key, map[string]interface{}{
			"created_at":  client.CreatedAt.Format(time.RFC3339),
			"remote_addr": conn.RemoteAddr().String(),
			"status":      "active",
		})
		r.redis.SAdd(ctx, activeClientsKey, client.ID)
		r.redis.Expire(ctx, key, r.config.ClientTimeout)
	}
	return client, nil
}

// Get retrieves a client by ID
func (r *Registry) Get(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[id]
	return client, exists
}

// Remove closes and forgets a client
func (r *Registry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.clients[id]
	if !exists {
		return
	}
	client.Close()
	r.forget(ctx, id)
}

func (r *Registry) forget(ctx context.Context, id string) {
	delete(r.clients, id)

	if r.redis != nil {
		r.redis.Del(ctx, "client:"+id)
		r.redis.SRem(ctx, activeClientsKey, id)
	}
}

// Count returns the number of connected clients
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CleanupInactive closes clients idle for longer than the client timeout
func (r *Registry) CleanupInactive(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, client := range r.clients {
		if now.Sub(client.LastActive()) > r.config.ClientTimeout {
			log.Printf("⏰ [%s] Closing idle client", id[:8])
			client.Close()
			r.forget(ctx, id)
		}
	}
}

// StartCleanupRoutine runs CleanupInactive every minute until ctx is done
func (r *Registry) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CleanupInactive(ctx)
		}
	}
}

// Shutdown closes all clients
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, client := range r.clients {
		client.Close()
		r.forget(context.Background(), id)
	}

	if r.redis != nil {
		r.redis.Close()
	}
}
