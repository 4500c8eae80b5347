// Package io reads and writes quiz layouts as portable JSON documents.
//
// A layout document carries a quiz's title and component list without its
// store identity, so it can be exported from one deployment and imported
// into another:
//
//	{
//	  "format": "quizgrid/layout",
//	  "version": 1,
//	  "title": "Capital Cities",
//	  "components": [
//	    {"id": "timer-1a2b3c4d", "type": "timer", "position": {"x": 10, "y": 0},
//	     "settings": {"size": {"width": 2, "height": 1}}}
//	  ]
//	}
//
// Reading validates component ids, kinds and styles. Placement (overlap
// and bounds) is left to the editor that commits the imported list.
package io
