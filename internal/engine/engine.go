package engine

import (
	"gator-post/internal/database"
	"gator-post/internal/engine/actors"
	"gator-post/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	userSupervisor     *actor.PID
	directMessageActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, metrics *utils.MetricsCollector, bcryptCost int) *Engine {
	context := system.Root

	// Spawn user supervisor
	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserSupervisor(store, metrics, bcryptCost)
	})
	userPID := context.Spawn(userProps)

	// Spawn direct message actor
	messageProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewDirectMessageActor(store, metrics)
	})
	messagePID := context.Spawn(messageProps)

	return &Engine{
		userSupervisor:     userPID,
		directMessageActor: messagePID,
	}
}

// GetUserSupervisor returns the PID of the user supervisor
func (e *Engine) GetUserSupervisor() *actor.PID {
	return e.userSupervisor
}

// GetDirectMessageActor returns the PID of the direct message actor
func (e *Engine) GetDirectMessageActor() *actor.PID {
	return e.directMessageActor
}
