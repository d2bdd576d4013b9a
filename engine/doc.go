// Package engine implements the routing state machine of teammesh.
//
// An Engine owns a fixed registry of actors and a supervisor. A run
// alternates strictly between the two:
//
//	supervisor ─▶ actor ─▶ supervisor ─▶ actor ─▶ … ─▶ END
//
// The supervisor reads the whole conversation log and names the next actor
// or the terminal marker. The chosen actor runs through the safe execution
// wrapper (RunSafe), which appends exactly one message labeled with the
// actor's name whether the actor succeeded, failed or panicked. Actors never
// pick their successor; control always returns to the supervisor.
//
// # Termination
//
// A run ends when the supervisor answers with the terminal marker, when its
// answer cannot be parsed or the decision engine stays unavailable (both
// forced to the terminal marker), when the run budget is spent, or when the
// context is cancelled. The Result records which of these happened; the
// returned state has the same shape in every case.
//
// # Composition
//
// AsActor exposes a whole Engine as a single actor of kind orchestrator, so
// orchestrators nest into trees. The outer supervisor cannot tell a nested
// orchestrator apart from a worker with the same name: it sees one labeled
// message per dispatch either way.
//
// # Example
//
//	board, err := engine.New("chief_editor", decider, []core.Actor{research.AsActor(), production.AsActor()},
//	    func(o *engine.Options) {
//	        o.Logger = logger
//	        o.Observer = observe.NewOTel()
//	    })
//	if err != nil {
//	    return err
//	}
//
//	res, err := board.Respond(ctx, "Review the new Pixel phone", 35)
package engine
