// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package hostprofile learns what kind of questions a host actually asks and
scores new candidates against that profile.

The fit score combines style (0.30), complexity (0.25), length (0.20) and
topic (0.25) preferences, then blends the result toward 0.5 by the profile's
confidence. Confidence follows a logistic curve over the number of used
questions, centred on MinQuestionsForProfile, and fit scoring stays at 0.5
until it passes LowDataThreshold.

Each used question nudges the running averages with an exponential moving
average at LearningRate. The Manager applies updates one at a time.
*/
package hostprofile
