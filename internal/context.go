package internal

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"
