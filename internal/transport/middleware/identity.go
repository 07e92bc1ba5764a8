package middleware

import (
	"context"
	"net/http"

	"github.com/eduaid/review-service/internal/domain"
)

type actorKey struct{}

// Identity извлекает вызывающего из заголовков X-Actor-Id и X-Actor-Role
// и кладёт его в контекст запроса. Аутентификация выполняется выше по
// стеку, ядро доверяет заголовкам шлюза; отсутствие роли не даёт
// никаких прав
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.Actor{
			UserId: r.Header.Get("X-Actor-Id"),
			Role:   domain.Role(r.Header.Get("X-Actor-Role")),
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext возвращает вызывающего, положенного Identity
func ActorFromContext(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(actorKey{}).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}
