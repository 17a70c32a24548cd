package actors

import (
	"log"
	"sync"
	"time"

	"gator-post/internal/api"
	"gator-post/internal/database"
	"gator-post/internal/models"
	"gator-post/internal/utils"

	stdctx "context"

	"github.com/asynkron/protoactor-go/actor"
	"golang.org/x/crypto/bcrypt"
)

// GetCountsMsg asks an actor for the number of records it manages.
type GetCountsMsg struct{}

// Message types for the identity service
type (
	RegisterUserMsg struct {
		Username  string
		Password  string
		FirstName string
		LastName  string
		Phone     string
	}

	LoginMsg struct {
		Username string
		Password string
	}

	GetUserProfileMsg struct {
		Username string
	}

	GetAllUsersMsg struct{}
)

// UserSupervisor manages all user actors
type UserSupervisor struct {
	userActors map[string]*actor.PID
	mu         sync.RWMutex
	store      database.Store
	metrics    *utils.MetricsCollector
	bcryptCost int
}

func NewUserSupervisor(store database.Store, metrics *utils.MetricsCollector, bcryptCost int) actor.Actor {
	return &UserSupervisor{
		userActors: make(map[string]*actor.PID),
		store:      store,
		metrics:    metrics,
		bcryptCost: bcryptCost,
	}
}

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		startTime := time.Now()

		if msg.Username == "" || msg.Password == "" {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Username and password are required", nil))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(msg.Password), s.bcryptCost)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
			return
		}

		user := &models.User{
			Username:       msg.Username,
			HashedPassword: string(hashedPassword),
			FirstName:      msg.FirstName,
			LastName:       msg.LastName,
			Phone:          msg.Phone,
			JoinAt:         time.Now(),
		}

		// The store's uniqueness constraint decides registration races;
		// there is deliberately no existence check here.
		ctx := stdctx.Background()
		if err := s.store.SaveUser(ctx, user); err != nil {
			if utils.IsErrorCode(err, utils.ErrDuplicate) {
				log.Printf("Registration rejected, username taken: %s", msg.Username)
				context.Respond(err)
				return
			}
			log.Printf("Failed to save user %s: %v", msg.Username, err)
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
			return
		}

		s.spawnUserActor(context, user)

		log.Printf("Registered user %s", msg.Username)
		s.metrics.AddOperationLatency("register_user", time.Since(startTime))

		summary := user.Summary()
		context.Respond(&summary)

	case *LoginMsg:
		startTime := time.Now()

		ctx := stdctx.Background()
		user, err := s.store.GetUserByUsername(ctx, msg.Username)
		if err != nil {
			// Unknown username answers exactly like a wrong password.
			log.Printf("Login failed, user lookup: %v", err)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		pid := s.getOrSpawnUserActor(context, user)

		future := context.RequestFuture(pid, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			log.Printf("Login request to user actor failed: %v", err)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Login failed",
			})
			return
		}

		s.metrics.AddOperationLatency("login", time.Since(startTime))
		context.Respond(result)

	case *GetUserProfileMsg:
		ctx := stdctx.Background()
		user, err := s.store.GetUserByUsername(ctx, msg.Username)
		if err != nil {
			context.Respond(utils.NewUserNotFoundError(msg.Username))
			return
		}
		context.Respond(user)

	case *GetAllUsersMsg:
		ctx := stdctx.Background()
		users, err := s.store.GetAllUsers(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to list users", err))
			return
		}

		summaries := make([]models.UserSummary, 0, len(users))
		for _, u := range users {
			summaries = append(summaries, u.Summary())
		}
		context.Respond(summaries)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := s.store.CountUsers(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count users", err))
			return
		}
		context.Respond(count)
	}
}

func (s *UserSupervisor) spawnUserActor(context actor.Context, user *models.User) *actor.PID {
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(user, s.store)
	})

	pid := context.Spawn(props)

	s.mu.Lock()
	s.userActors[user.Username] = pid
	s.mu.Unlock()

	return pid
}

func (s *UserSupervisor) getOrSpawnUserActor(context actor.Context, user *models.User) *actor.PID {
	s.mu.RLock()
	pid, exists := s.userActors[user.Username]
	s.mu.RUnlock()

	if exists {
		return pid
	}

	return s.spawnUserActor(context, user)
}

// UserActor serializes operations for a single user
type UserActor struct {
	username string
	state    *models.User
	store    database.Store
}

func NewUserActor(user *models.User, store database.Store) *UserActor {
	return &UserActor{
		username: user.Username,
		state:    user,
		store:    store,
	}
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *LoginMsg:
		ctx := stdctx.Background()

		// Refresh state so a restarted supervisor still sees the stored hash
		user, err := a.store.GetUserByUsername(ctx, a.username)
		if err != nil {
			log.Printf("Login failed, could not refresh user %s: %v", a.username, err)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}
		a.state = user

		if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
			log.Printf("Login failed, password mismatch for %s", a.username)
			context.Respond(&api.LoginResponse{
				Success: false,
				Error:   "Invalid credentials",
			})
			return
		}

		// Best-effort: a failed timestamp update does not fail the login
		if err := a.store.UpdateLastLogin(ctx, a.username); err != nil {
			log.Printf("Warning: failed to update last login for %s: %v", a.username, err)
		}

		log.Printf("Login successful for user %s", a.username)

		context.Respond(&api.LoginResponse{
			Success:  true,
			Username: a.username,
		})
	}
}
