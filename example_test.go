package dreki_test

import (
	"fmt"

	dreki "github.com/jbuehler23/dreki-sub000"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type frozen struct{}

func Example_basic() {
	world := dreki.NewWorld()

	player := world.Spawn(position{X: 0, Y: 0}, velocity{X: 1, Y: 2})
	world.Spawn(position{X: 10, Y: 10}) // scenery, no velocity

	dreki.Query2(world, func(_ dreki.Entity, pos *position, vel *velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

	pos, _ := dreki.Get[position](world, player)
	fmt.Printf("player at (%v, %v)\n", pos.X, pos.Y)
	fmt.Println("entities:", world.EntityCount())

	// Output:
	// player at (1, 2)
	// entities: 2
}

func Example_lifecycle() {
	world := dreki.NewWorld()

	e := world.Spawn(position{})
	world.Despawn(e)

	// The slot is recycled; the stale handle stays dead.
	reused := world.Spawn(position{})
	fmt.Println("old handle alive:", world.IsAlive(e))
	fmt.Println("new handle alive:", world.IsAlive(reused))
	fmt.Println("handles:", e, reused)

	// Output:
	// old handle alive: false
	// new handle alive: true
	// handles: 0v0 0v1
}

func Example_filteredQuery() {
	world := dreki.NewWorld()

	world.Spawn(position{X: 1}, velocity{X: 1})
	world.Spawn(position{X: 2}, velocity{X: 1}, frozen{})

	// Frozen entities keep their velocity but are skipped by movement.
	moved := 0
	dreki.Query2(world, func(e dreki.Entity, pos *position, vel *velocity) {
		if _, ok := dreki.Get[frozen](world, e); ok {
			return
		}
		pos.X += vel.X
		moved++
	})
	fmt.Println("moved:", moved)

	// Output:
	// moved: 1
}

func Example_commands() {
	world := dreki.NewWorld()
	for i := 0; i < 3; i++ {
		world.Spawn(position{X: float64(i)})
	}

	// Structural changes are deferred while a query pass holds the columns.
	cmds := dreki.NewCommands()
	dreki.Query1(world, func(e dreki.Entity, pos *position) {
		if pos.X == 0 {
			cmds.Despawn(e)
		}
	})
	cmds.Flush(world)

	fmt.Println("entities:", world.EntityCount())

	// Output:
	// entities: 2
}
