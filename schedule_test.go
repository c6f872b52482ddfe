package archon

import "testing"

type sampleWorld struct {
	world   *World
	counter *int
}

func TestRunScheduleInvokesInInsertionOrder(t *testing.T) {
	var order []string
	s := CreateSchedule[sampleWorld]()
	s.AddSystemImmutable(func(sampleWorld) { order = append(order, "a") })
	s.AddSystemMutable(func(sampleWorld) { order = append(order, "b") })
	s.AddSystemImmutable(func(sampleWorld) { order = append(order, "c") })

	RunSchedule(s, sampleWorld{})

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestScheduleSystemsObserveSharedWorld(t *testing.T) {
	w := CreateWorld()
	position := Register[Position](w)

	s := CreateSchedule[sampleWorld]()
	s.AddSystemMutable(func(sw sampleWorld) {
		Spawn(sw.world, position.Of(Position{}))
	})
	s.AddSystemImmutable(func(sw sampleWorld) {
		*sw.counter = QueryCount(sw.world, position.Mask(), mask0())
	})

	counter := 0
	RunSchedule(s, sampleWorld{world: w, counter: &counter})

	if counter != 1 {
		t.Errorf("counter = %d, want 1", counter)
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
