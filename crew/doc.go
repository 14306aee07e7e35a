// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package crew implements the three-stage AWS expert pipeline and the
// orchestration adapter that fronts it.
//
// A Crew runs its tasks strictly sequentially: the query stage consults
// the AWS knowledge tool, the search stage gathers web results, and the
// report stage synthesizes both into the final answer. Each stage's
// output is injected into the next stage's prompt.
//
// The Adapter owns one assembled Crew, built at process startup and
// injected into consumers. When a run on the assembled crew fails, the
// adapter reconstructs an equivalent crew from the same agent and task
// factories and tries once more before reporting failure.
package crew
