// Package format rewrites brace placement in C-family source text into
// Allman style using line-level rules only.
//
// The pipeline is Normalize (newlines, tabs), Reflow (split `}` and `{` onto
// their own lines) and a blank-run collapse. No tokenizer is involved, so
// braces inside string literals or comments are treated like any other brace.
//
// Назначение: построчный рефлоу фигурных скобок.
// Не делает: разбора языка, валидации синтаксиса, IO.
// Зависимости: internal/source.
package format
