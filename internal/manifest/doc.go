// Package manifest defines the output directory convention downstream
// collaborators discover artifacts by.
//
// Every published title owns one directory under the output root:
//
//	<outputRoot>/<titleId>/
//	    master.mp4          combined video output; its presence marks the title ready
//	    audio_<lang>.aac    one file per processed audio stream
//	    sub_<lang>.vtt      one file per converted subtitle stream
//
// The layout is the pipeline's only externally visible contract. Listing and
// track discovery are pure filesystem operations over this convention.
package manifest
