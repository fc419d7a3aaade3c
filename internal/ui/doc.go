// Package ui contains the Bubble Tea program that renders the attached
// session. The Model focuses on message routing; rendering, keystroke
// encoding, and the window switcher live in dedicated files.
//
// Message flow:
//   - The backend forwarder delivers orchestrator events wrapped in
//     EventMsg via Program.Send; redraw hints arrive pre-coalesced.
//   - Key presses are encoded back into the byte sequences a terminal
//     would have produced and handed to the focused pane's session,
//     which routes them out through the gateway. A small set of chords
//     (the window switcher, local tab switching, pane focus movement)
//     is intercepted first.
//   - Mouse drags on split separators suspend resize reporting for the
//     duration of the drag and issue a single resize command on release.
//
// State ownership:
//   - All session, window, and pane state belongs to the orchestrator;
//     the Model reads it through narrow accessors at render time and
//     keeps only presentation state of its own (switcher, drag, status).
package ui
