package store

import "database/sql"

type DownloadStats struct {
	TotalDownloads int
	FilesDelivered int
	FilesSkipped   int
	ByMode         map[string]int
	TopProducts    []ProductDownloadCount
}

type ProductDownloadCount struct {
	ProductID string
	Count     int
}

func (s *Store) GetDownloadStats() (*DownloadStats, error) {
	stats := &DownloadStats{
		ByMode: make(map[string]int),
	}

	err := s.DB.QueryRow(`SELECT COUNT(*), COALESCE(SUM(files), 0), COALESCE(SUM(skipped), 0) FROM download_log`).
		Scan(&stats.TotalDownloads, &stats.FilesDelivered, &stats.FilesSkipped)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.Query(`SELECT mode, COUNT(*) FROM download_log GROUP BY mode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var mode string
		var count int
		if err := rows.Scan(&mode, &count); err != nil {
			return nil, err
		}
		stats.ByMode[mode] = count
	}

	topRows, err := s.DB.Query(`
		SELECT product_id, COUNT(*) AS n
		FROM download_log
		WHERE mode != 'none'
		GROUP BY product_id
		ORDER BY n DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var pc ProductDownloadCount
		if err := topRows.Scan(&pc.ProductID, &pc.Count); err != nil {
			return nil, err
		}
		stats.TopProducts = append(stats.TopProducts, pc)
	}

	return stats, nil
}
