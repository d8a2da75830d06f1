/*
Package timeline contains the data model behind the timeline editor: the song
being edited, the view state of the timeline (zoom, scroll, which grid levels
are shown, whether snapping is on), the warp gesture and the playback cursor.

The editor does not modify the Model data directly; instead there are types
Action, Bool and Int which manipulate the model in a controlled way, recording
undo history and notifying the song collaborator. For example,
model.Snap().Toggle() toggles snapping and model.Undo().Do() undoes the last
change to the song.

Every change to the song goes through the same path: the change is recorded
on the undo stack, OnSongUpdate is called once with a copy of the new song and
the copy is also offered to the player through the Broker.
*/
package timeline
