package vec

// Column адресует вертикальный столбец вокселей (x, z) в мировой сетке.
type Column struct {
	X, Z int
}

// ToChunkColumn возвращает столбец чанков, содержащий данный столбец вокселей.
func (c Column) ToChunkColumn(size int) Column {
	return Column{X: floorDiv(c.X, size), Z: floorDiv(c.Z, size)}
}

// Voxel возвращает воксель столбца на высоте y.
func (c Column) Voxel(y int) VoxelCoord {
	return VoxelCoord{X: c.X, Y: y, Z: c.Z}
}
