package driver

import "fmt"

var SchemaQueries = []string{
	"CREATE CONSTRAINT ingredient_name IF NOT EXISTS FOR (i:Ingredient) REQUIRE i.name IS UNIQUE",
	"CREATE CONSTRAINT category_name IF NOT EXISTS FOR (c:Category) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT latest_pairing_uuid IF NOT EXISTS FOR (l:LatestPairing) REQUIRE l.uuid IS UNIQUE",
}

const (
	SaveCategoryQuery = `
		MERGE (c:Category {name: $name})
		SET c.color = $color
		RETURN c.name AS name
	`

	FindIngredientQuery = `
		MATCH (i:Ingredient {name: $name})
		OPTIONAL MATCH (i)-[:HAS_CATEGORY]->(c:Category)
		OPTIONAL MATCH (i)-[p:PAIRS_WITH]-(other:Ingredient)
		WITH i, c, collect(CASE WHEN p IS NULL THEN NULL ELSE {
			uuid: p.uuid,
			first: startNode(p).name,
			second: endNode(p).name,
			affinity: p.affinity,
			created_at: p.created_at
		} END) AS pairings
		RETURN i.name AS name, c.name AS category, c.color AS color, pairings
		LIMIT 1
	`

	// SaveIngredientQuery attaches the category only to an ingredient that has none,
	// so a concurrent create for the same name keeps the first category.
	SaveIngredientQuery = `
		MERGE (c:Category {name: $category})
		MERGE (i:Ingredient {name: $name})
		ON CREATE SET i.created_at = $created_at
		WITH i, c
		OPTIONAL MATCH (i)-[:HAS_CATEGORY]->(existing:Category)
		FOREACH (x IN CASE WHEN existing IS NULL THEN [1] ELSE [] END |
			MERGE (i)-[:HAS_CATEGORY]->(c))
		WITH i, coalesce(existing, c) AS cat
		RETURN i.name AS name, cat.name AS category, cat.color AS color
	`

	// SavePairingQuery merges an undirected relationship: an existing pairing in
	// either direction is returned unchanged.
	SavePairingQuery = `
		MATCH (a:Ingredient {name: $first})
		MATCH (b:Ingredient {name: $second})
		MERGE (a)-[p:PAIRS_WITH]-(b)
		ON CREATE SET p.uuid = $uuid,
			p.affinity = $affinity,
			p.created_at = $created_at
		RETURN p.uuid AS uuid, startNode(p).name AS first, endNode(p).name AS second,
			p.affinity AS affinity, p.created_at AS created_at
	`

	// GetTriosQuery returns each triangle twice, once per orientation. relId is the
	// pairing opposite the queried ingredient, which both orientations share.
	GetTriosQuery = `
		MATCH (a:Ingredient {name: $name})-[:PAIRS_WITH]-(b:Ingredient)-[r:PAIRS_WITH]-(c:Ingredient)-[:PAIRS_WITH]-(a)
		RETURN elementId(r) AS relId, a.name AS firstName, b.name AS secondName, c.name AS thirdName
		ORDER BY secondName, thirdName
	`

	ListLatestPairingsQuery = `
		MATCH (l:LatestPairing)
		RETURN l.uuid AS uuid, l.ingredient1 AS ingredient1, l.ingredient2 AS ingredient2, l.date_added AS date_added
	`

	SaveLatestPairingQuery = `
		MERGE (l:LatestPairing {uuid: $uuid})
		SET l.ingredient1 = $ingredient1,
			l.ingredient2 = $ingredient2,
			l.date_added = $date_added
		RETURN l.uuid AS uuid
	`

	DeleteLatestPairingQuery = `
		MATCH (l:LatestPairing {uuid: $uuid})
		DELETE l
	`
)

// FlavorPathsQuery walks up to maxDepth pairings from the root and ends at the
// last ingredient's category. The root is never revisited. Neo4j does not
// accept a parameter as a variable-length bound.
func FlavorPathsQuery(maxDepth int) string {
	return fmt.Sprintf(`
		MATCH p = (root:Ingredient {name: $name})-[:PAIRS_WITH*1..%d]-(:Ingredient)-[:HAS_CATEGORY]->(:Category)
		WHERE single(n IN nodes(p) WHERE n = root)
		RETURN p
	`, maxDepth)
}
