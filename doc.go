/*
Package multitrack contains the data model of a multitrack rehearsal song: the
Song aggregate with its tempo map, time signatures and markers.

All positions in the model are absolute times in seconds. Musical positions
(measures, beats) are never stored; they are derived from the tempo map by the
tempo package. The grid, warp and waveform packages build the interactive
timeline on top of these, and the timeline package ties them into a Model that
owns the Song, the same way an editor would.
*/
package multitrack
