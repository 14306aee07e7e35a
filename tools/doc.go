// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the capabilities crew agents can invoke while
// working a task: a deterministic AWS knowledge lookup and a Serper.dev
// web search client. Tools are plain structs with a Name, Description,
// and Run method; the crew package consumes them through its Tool
// interface.
package tools
